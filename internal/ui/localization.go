package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/ytget/direct-downloader/internal/model"
)

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle       = "app_title"
	KeyFile           = "file"
	KeySettings       = "settings"
	KeyLanguage       = "language"
	KeyQuit           = "quit"
	KeySectionDirect  = "section_direct"
	KeySectionCommand = "section_command"
	KeySectionAudio   = "section_audio"
	KeySectionLog     = "section_log"

	KeyEnterURL       = "enter_url"
	KeyFilenameHint   = "filename_hint"
	KeyDownload       = "download"
	KeyHeadCheck      = "head_check"
	KeyCancel         = "cancel"
	KeyClear          = "clear"
	KeyInspectPage    = "inspect_page"
	KeyReveal         = "reveal"
	KeyOpen           = "open"
	KeyInvalidURL     = "invalid_url"
	KeyPleaseEnterURL = "please_enter_url"

	KeyWaiting     = "waiting"
	KeyPreparing   = "preparing"
	KeyDownloading = "downloading"
	KeyDone        = "done"
	KeyFailed      = "failed"
	KeyFailedNet   = "failed_network"

	KeyMode          = "mode"
	KeyModeBest      = "mode_best"
	KeyModeVideo     = "mode_video"
	KeyModeAudio     = "mode_audio"
	KeyOutDir        = "out_dir"
	KeyCopyCommand   = "copy_command"
	KeyExplain       = "explain"
	KeyExplainNotice = "explain_notice"

	KeyAudioOn        = "audio_on"
	KeyAudioOff       = "audio_off"
	KeyStartAudio     = "start_audio"
	KeyStopAudio      = "stop_audio"
	KeyMute           = "mute"
	KeyUnmute         = "unmute"
	KeyAudioSource    = "audio_source"
	KeyAudioLink      = "audio_link"
	KeyAudioBlocked   = "audio_blocked"
	KeyAudioState     = "audio_state"
	KeyStrategyRemote = "strategy_remote"
	KeyStrategyLink   = "strategy_link"
	KeyStrategySynth  = "strategy_synth"

	KeyCopyLog           = "copy_log"
	KeyCopied            = "copied"
	KeySave              = "save"
	KeySettingsSaved     = "settings_saved"
	KeyDownloadDir       = "download_dir"
	KeyRuntimeConfig     = "runtime_config"
	KeyDownloadCompleted = "download_completed"
	KeyErrorOpeningFile  = "error_opening_file"

	KeyHintInvalidInput = "hint_invalid_input"
	KeyHintTransport    = "hint_transport"
	KeyHintHTTP         = "hint_http"
	KeyHintCanceled     = "hint_canceled"
	KeyHintLimit        = "hint_limit"
	KeyHintSave         = "hint_save"
)

// Language codes
const (
	LanguageEnglish = "en"
	LanguageKorean  = "ko"
	LanguageSystem  = "system"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: LanguageEnglish,
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language. "system" picks the language from
// the LANG/LC_ALL environment, falling back to English.
func (l *Localization) SetLanguage(lang string) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == LanguageSystem || lang == "" {
		lang = systemLanguage()
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts[LanguageEnglish]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	return key
}

// Textf formats the localized text for key with args
func (l *Localization) Textf(key string, args ...any) string {
	return fmt.Sprintf(l.GetText(key), args...)
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		LanguageEnglish: "English",
		LanguageKorean:  "한국어",
	}
}

// Hint returns the localized user hint for a failed retrieval
func (l *Localization) Hint(err *model.RetrievalError) string {
	if err == nil {
		return ""
	}

	switch err.Kind {
	case model.ErrorKindInvalidInput:
		return l.GetText(KeyHintInvalidInput)
	case model.ErrorKindTransport:
		return l.GetText(KeyHintTransport)
	case model.ErrorKindHTTP:
		return l.Textf(KeyHintHTTP, err.HTTPStatus)
	case model.ErrorKindCanceled:
		return l.GetText(KeyHintCanceled)
	case model.ErrorKindLimitExceeded:
		return l.GetText(KeyHintLimit)
	case model.ErrorKindSave:
		return l.GetText(KeyHintSave)
	default:
		return err.Hint()
	}
}

func systemLanguage() string {
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		value := strings.ToLower(os.Getenv(name))
		if value == "" {
			continue
		}
		if strings.HasPrefix(value, LanguageKorean) {
			return LanguageKorean
		}
		return LanguageEnglish
	}
	return LanguageEnglish
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	// English texts
	l.texts[LanguageEnglish] = map[string]string{
		KeyAppTitle:       "Direct Downloader",
		KeyFile:           "File",
		KeySettings:       "Settings",
		KeyLanguage:       "Language",
		KeyQuit:           "Quit",
		KeySectionDirect:  "Direct file download",
		KeySectionCommand: "yt-dlp command recipe",
		KeySectionAudio:   "Background audio",
		KeySectionLog:     "Activity log",

		KeyEnterURL:       "File URL (https://example.com/file.mp3)",
		KeyFilenameHint:   "File name (optional)",
		KeyDownload:       "Download",
		KeyHeadCheck:      "HEAD check",
		KeyCancel:         "Cancel",
		KeyClear:          "Clear",
		KeyInspectPage:    "Find media on page",
		KeyReveal:         "Show in folder",
		KeyOpen:           "Open",
		KeyInvalidURL:     "Invalid URL",
		KeyPleaseEnterURL: "Please enter a URL",

		KeyWaiting:     "Waiting",
		KeyPreparing:   "Preparing download...",
		KeyDownloading: "Downloading...",
		KeyDone:        "Done!",
		KeyFailed:      "Failed: %s",
		KeyFailedNet:   "Failed: network/cross-origin",

		KeyMode:          "Mode",
		KeyModeBest:      "Best (video+audio)",
		KeyModeVideo:     "Video (mp4)",
		KeyModeAudio:     "Audio only (mp3)",
		KeyOutDir:        "Output folder (optional)",
		KeyCopyCommand:   "Copy command",
		KeyExplain:       "Usage notice",
		KeyExplainNotice: "Use yt-dlp only where the site's terms allow it. Download only content you own or have rights to.",

		KeyAudioOn:        "Audio: ON",
		KeyAudioOff:       "Audio: OFF",
		KeyStartAudio:     "Start audio",
		KeyStopAudio:      "Stop audio",
		KeyMute:           "Mute",
		KeyUnmute:         "Unmute",
		KeyAudioSource:    "Source",
		KeyAudioLink:      "Audio link (http/https)",
		KeyAudioBlocked:   "Audio could not start automatically. Press Start audio.",
		KeyAudioState:     "State: %s",
		KeyStrategyRemote: "Built-in track",
		KeyStrategyLink:   "My link",
		KeyStrategySynth:  "Synth loop",

		KeyCopyLog:           "Copy log",
		KeyCopied:            "Copied to clipboard",
		KeySave:              "Save",
		KeySettingsSaved:     "Settings saved",
		KeyDownloadDir:       "Download directory",
		KeyRuntimeConfig:     "Runtime options come from direct-dl.yaml and DIRECTDL_* variables",
		KeyDownloadCompleted: "Download completed",
		KeyErrorOpeningFile:  "Error opening file",

		KeyHintInvalidInput: "Enter a full http:// or https:// URL",
		KeyHintTransport:    "Check the network or cross-origin restrictions; a direct file link works best",
		KeyHintHTTP:         "Server returned status %d",
		KeyHintCanceled:     "Download was canceled",
		KeyHintLimit:        "File is larger than the configured size limit",
		KeyHintSave:         "Could not write the file to the download directory",
	}

	// Korean texts
	l.texts[LanguageKorean] = map[string]string{
		KeyAppTitle:       "직접 다운로더",
		KeyFile:           "파일",
		KeySettings:       "설정",
		KeyLanguage:       "언어",
		KeyQuit:           "종료",
		KeySectionDirect:  "직접 파일 다운로드",
		KeySectionCommand: "yt-dlp 명령어 생성",
		KeySectionAudio:   "배경 음악",
		KeySectionLog:     "로그",

		KeyEnterURL:       "파일 URL (https://example.com/file.mp3)",
		KeyFilenameHint:   "파일명 (선택)",
		KeyDownload:       "다운로드",
		KeyHeadCheck:      "HEAD 확인",
		KeyCancel:         "취소",
		KeyClear:          "초기화",
		KeyInspectPage:    "페이지에서 미디어 찾기",
		KeyReveal:         "폴더에서 보기",
		KeyOpen:           "열기",
		KeyInvalidURL:     "잘못된 URL",
		KeyPleaseEnterURL: "URL을 먼저 입력해줘",

		KeyWaiting:     "대기 중",
		KeyPreparing:   "다운로드 준비 중...",
		KeyDownloading: "다운로드 중...",
		KeyDone:        "완료!",
		KeyFailed:      "실패: %s",
		KeyFailedNet:   "실패: 네트워크/CORS",

		KeyMode:          "모드",
		KeyModeBest:      "최고 품질 (영상+음성)",
		KeyModeVideo:     "영상 (mp4)",
		KeyModeAudio:     "음성만 (mp3)",
		KeyOutDir:        "저장 폴더 (선택)",
		KeyCopyCommand:   "명령어 복사",
		KeyExplain:       "사용 안내",
		KeyExplainNotice: "yt-dlp는 사이트 정책이 허용하는 범위 내에서 사용해야 해. 개인 소유/권한 있는 콘텐츠만 다운로드해줘.",

		KeyAudioOn:        "BGM: ON",
		KeyAudioOff:       "BGM: OFF",
		KeyStartAudio:     "BGM 시작",
		KeyStopAudio:      "BGM 정지",
		KeyMute:           "음소거",
		KeyUnmute:         "음소거 해제",
		KeyAudioSource:    "음원",
		KeyAudioLink:      "음악 링크 (http/https)",
		KeyAudioBlocked:   "자동 재생이 막혔어. BGM 시작을 눌러줘.",
		KeyAudioState:     "상태: %s",
		KeyStrategyRemote: "기본 음악",
		KeyStrategyLink:   "내 링크",
		KeyStrategySynth:  "신스 루프",

		KeyCopyLog:           "로그 복사",
		KeyCopied:            "클립보드에 복사 완료",
		KeySave:              "저장",
		KeySettingsSaved:     "설정 저장됨",
		KeyDownloadDir:       "다운로드 폴더",
		KeyRuntimeConfig:     "실행 옵션은 direct-dl.yaml 과 DIRECTDL_* 환경 변수에서 읽어",
		KeyDownloadCompleted: "다운로드 완료",
		KeyErrorOpeningFile:  "파일 열기 오류",

		KeyHintInvalidInput: "http:// 또는 https:// 로 시작하는 전체 URL을 입력해줘",
		KeyHintTransport:    "네트워크/CORS 제한을 확인해줘. 직접 파일 링크가 가장 잘 동작해",
		KeyHintHTTP:         "서버 응답 상태 %d",
		KeyHintCanceled:     "다운로드가 취소됨",
		KeyHintLimit:        "설정된 최대 크기보다 큰 파일이야",
		KeyHintSave:         "다운로드 폴더에 파일을 쓸 수 없어",
	}
}
