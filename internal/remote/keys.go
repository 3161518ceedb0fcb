package remote

import (
	"sort"
	"strings"
)

// Key is a Viera remote-control key event code as sent on the wire.
type Key string

// Remote-control key codes understood by the TV's p00NetworkControl service.
// The wire format is NRC_{KEY}-ONOFF; a single code covers both the press
// and release of the physical button.
const (
	KeyThirtySecondSkip Key = "NRC_30S_SKIP-ONOFF"
	KeyToggle3D         Key = "NRC_3D-ONOFF"
	KeyApps             Key = "NRC_APPS-ONOFF"
	KeyAspect           Key = "NRC_ASPECT-ONOFF"
	KeyBlue             Key = "NRC_BLUE-ONOFF"
	KeyCancel           Key = "NRC_CANCEL-ONOFF"
	KeyCC               Key = "NRC_CC-ONOFF"
	KeyChatMode         Key = "NRC_CHAT_MODE-ONOFF"
	KeyChannelDown      Key = "NRC_CH_DOWN-ONOFF"
	KeyChannelUp        Key = "NRC_CH_UP-ONOFF"
	KeyInput            Key = "NRC_CHG_INPUT-ONOFF"
	KeyNetwork          Key = "NRC_CHG_NETWORK-ONOFF"
	KeyDigaControl      Key = "NRC_DIGA_CTL-ONOFF"
	KeyDisplay          Key = "NRC_DISP_MODE-ONOFF"
	KeyDown             Key = "NRC_DOWN-ONOFF"
	KeyEnter            Key = "NRC_ENTER-ONOFF"
	KeyEPG              Key = "NRC_EPG-ONOFF"
	KeyEzSync           Key = "NRC_EZ_SYNC-ONOFF"
	KeyFavorite         Key = "NRC_FAVORITE-ONOFF"
	KeyFastForward      Key = "NRC_FF-ONOFF"
	KeyGame             Key = "NRC_GAME-ONOFF"
	KeyGreen            Key = "NRC_GREEN-ONOFF"
	KeyGuide            Key = "NRC_GUIDE-ONOFF"
	KeyHold             Key = "NRC_HOLD-ONOFF"
	KeyHome             Key = "NRC_HOME-ONOFF"
	KeyIndex            Key = "NRC_INDEX-ONOFF"
	KeyInfo             Key = "NRC_INFO-ONOFF"
	KeyConnect          Key = "NRC_INTERNET-ONOFF"
	KeyLeft             Key = "NRC_LEFT-ONOFF"
	KeyMenu             Key = "NRC_MENU-ONOFF"
	KeyMPX              Key = "NRC_MPX-ONOFF"
	KeyMute             Key = "NRC_MUTE-ONOFF"
	KeyNetBS            Key = "NRC_NET_BS-ONOFF"
	KeyNetCS            Key = "NRC_NET_CS-ONOFF"
	KeyNetTD            Key = "NRC_NET_TD-ONOFF"
	KeyOffTimer         Key = "NRC_OFFTIMER-ONOFF"
	KeyPause            Key = "NRC_PAUSE-ONOFF"
	KeyPictAI           Key = "NRC_PICTAI-ONOFF"
	KeyPlay             Key = "NRC_PLAY-ONOFF"
	KeyPNR              Key = "NRC_P_NR-ONOFF"
	KeyPower            Key = "NRC_POWER-ONOFF"
	KeyProgram          Key = "NRC_PROG-ONOFF"
	KeyRecord           Key = "NRC_REC-ONOFF"
	KeyRed              Key = "NRC_RED-ONOFF"
	KeyReturn           Key = "NRC_RETURN-ONOFF"
	KeyRewind           Key = "NRC_REW-ONOFF"
	KeyRight            Key = "NRC_RIGHT-ONOFF"
	KeyRScreen          Key = "NRC_R_SCREEN-ONOFF"
	KeyLastView         Key = "NRC_R_TUNE-ONOFF"
	KeySAP              Key = "NRC_SAP-ONOFF"
	KeyToggleSDCard     Key = "NRC_SD_CARD-ONOFF"
	KeySkipNext         Key = "NRC_SKIP_NEXT-ONOFF"
	KeySkipPrev         Key = "NRC_SKIP_PREV-ONOFF"
	KeySplit            Key = "NRC_SPLIT-ONOFF"
	KeyStop             Key = "NRC_STOP-ONOFF"
	KeySubtitles        Key = "NRC_STTL-ONOFF"
	KeyOption           Key = "NRC_SUBMENU-ONOFF"
	KeySurround         Key = "NRC_SURROUND-ONOFF"
	KeySwap             Key = "NRC_SWAP-ONOFF"
	KeyText             Key = "NRC_TEXT-ONOFF"
	KeyTV               Key = "NRC_TV-ONOFF"
	KeyUp               Key = "NRC_UP-ONOFF"
	KeyVieraLink        Key = "NRC_VIERA_LINK-ONOFF"
	KeyVolumeDown       Key = "NRC_VOLDOWN-ONOFF"
	KeyVolumeUp         Key = "NRC_VOLUP-ONOFF"
	KeyVTools           Key = "NRC_VTOOLS-ONOFF"
	KeyYellow           Key = "NRC_YELLOW-ONOFF"
	KeyNum0             Key = "NRC_D0-ONOFF"
	KeyNum1             Key = "NRC_D1-ONOFF"
	KeyNum2             Key = "NRC_D2-ONOFF"
	KeyNum3             Key = "NRC_D3-ONOFF"
	KeyNum4             Key = "NRC_D4-ONOFF"
	KeyNum5             Key = "NRC_D5-ONOFF"
	KeyNum6             Key = "NRC_D6-ONOFF"
	KeyNum7             Key = "NRC_D7-ONOFF"
	KeyNum8             Key = "NRC_D8-ONOFF"
	KeyNum9             Key = "NRC_D9-ONOFF"
)

// keysByName maps upper-case friendly names to key codes. Lookup is
// case-insensitive on the name. EXIT aliases CANCEL, matching the
// button legend on newer remotes.
var keysByName = map[string]Key{
	"THIRTY_SECOND_SKIP": KeyThirtySecondSkip,
	"TOGGLE_3D":          KeyToggle3D,
	"APPS":               KeyApps,
	"ASPECT":             KeyAspect,
	"BLUE":               KeyBlue,
	"CANCEL":             KeyCancel,
	"CC":                 KeyCC,
	"CHAT_MODE":          KeyChatMode,
	"CH_DOWN":            KeyChannelDown,
	"CH_UP":              KeyChannelUp,
	"INPUT_KEY":          KeyInput,
	"NETWORK":            KeyNetwork,
	"DIGA_CONTROL":       KeyDigaControl,
	"DISPLAY":            KeyDisplay,
	"DOWN":               KeyDown,
	"ENTER":              KeyEnter,
	"EPG":                KeyEPG,
	"EXIT":               KeyCancel,
	"EZ_SYNC":            KeyEzSync,
	"FAVORITE":           KeyFavorite,
	"FAST_FORWARD":       KeyFastForward,
	"GAME":               KeyGame,
	"GREEN":              KeyGreen,
	"GUIDE":              KeyGuide,
	"HOLD":               KeyHold,
	"HOME":               KeyHome,
	"INDEX":              KeyIndex,
	"INFO":               KeyInfo,
	"CONNECT":            KeyConnect,
	"LEFT":               KeyLeft,
	"MENU":               KeyMenu,
	"MPX":                KeyMPX,
	"MUTE":               KeyMute,
	"NET_BS":             KeyNetBS,
	"NET_CS":             KeyNetCS,
	"NET_TD":             KeyNetTD,
	"OFF_TIMER":          KeyOffTimer,
	"PAUSE":              KeyPause,
	"PICTAI":             KeyPictAI,
	"PLAY":               KeyPlay,
	"P_NR":               KeyPNR,
	"POWER":              KeyPower,
	"PROGRAM":            KeyProgram,
	"RECORD":             KeyRecord,
	"RED":                KeyRed,
	"RETURN_KEY":         KeyReturn,
	"REWIND":             KeyRewind,
	"RIGHT":              KeyRight,
	"R_SCREEN":           KeyRScreen,
	"LAST_VIEW":          KeyLastView,
	"SAP":                KeySAP,
	"TOGGLE_SD_CARD":     KeyToggleSDCard,
	"SKIP_NEXT":          KeySkipNext,
	"SKIP_PREV":          KeySkipPrev,
	"SPLIT":              KeySplit,
	"STOP":               KeyStop,
	"SUBTITLES":          KeySubtitles,
	"OPTION":             KeyOption,
	"SURROUND":           KeySurround,
	"SWAP":               KeySwap,
	"TEXT":               KeyText,
	"TV":                 KeyTV,
	"UP":                 KeyUp,
	"LINK":               KeyVieraLink,
	"VOLUME_DOWN":        KeyVolumeDown,
	"VOLUME_UP":          KeyVolumeUp,
	"VTOOLS":             KeyVTools,
	"YELLOW":             KeyYellow,
	"NUM_0":              KeyNum0,
	"NUM_1":              KeyNum1,
	"NUM_2":              KeyNum2,
	"NUM_3":              KeyNum3,
	"NUM_4":              KeyNum4,
	"NUM_5":              KeyNum5,
	"NUM_6":              KeyNum6,
	"NUM_7":              KeyNum7,
	"NUM_8":              KeyNum8,
	"NUM_9":              KeyNum9,
}

// keysByCode indexes the catalogue by wire code for reverse lookup.
var keysByCode = func() map[Key]string {
	m := make(map[Key]string, len(keysByName))
	for name, key := range keysByName {
		// CANCEL wins over its EXIT alias for reverse lookup.
		if existing, ok := m[key]; ok && existing < name {
			continue
		}
		m[key] = name
	}
	return m
}()

// LookupKey resolves a command string to a key code.
//
// Resolution order matches the original remote's behaviour:
//  1. Friendly name, case-insensitive ("volume_up" -> NRC_VOLUP-ONOFF)
//  2. Exact wire code ("NRC_VOLUP-ONOFF")
//
// Returns false if the string matches neither.
func LookupKey(s string) (Key, bool) {
	if key, ok := keysByName[strings.ToUpper(s)]; ok {
		return key, true
	}
	if _, ok := keysByCode[Key(s)]; ok {
		return Key(s), true
	}
	return "", false
}

// KeyName returns the friendly name for a key code, or the raw code if
// the key is not in the catalogue.
func KeyName(key Key) string {
	if name, ok := keysByCode[key]; ok {
		return name
	}
	return string(key)
}

// KeyCatalogue returns the full name-to-code catalogue sorted by name.
func KeyCatalogue() []CatalogueEntry {
	entries := make([]CatalogueEntry, 0, len(keysByName))
	for name, key := range keysByName {
		entries = append(entries, CatalogueEntry{Name: name, Code: string(key)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// CatalogueEntry pairs a friendly key name with its wire code.
type CatalogueEntry struct {
	Name string `json:"name"`
	Code string `json:"code"`
}
