package chatshare

// Platform identifies the chat product that rendered a share page.
type Platform string

// Platform constants.
const (
	PlatformUnknown Platform = ""
	PlatformChatGPT Platform = "chatgpt"
	PlatformClaude  Platform = "claude"
	PlatformGemini  Platform = "gemini"
	PlatformGrok    Platform = "grok"
)

// PlatformDetector identifies the platform from a share page's markup.
type PlatformDetector interface {
	// Detect returns PlatformUnknown when the platform cannot be determined.
	Detect(html string) Platform
}
