package plugin

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/go-ports/contextmenu/internal/menu"
)

// HookSet names the MenuProvider methods nautilus-python calls. Every
// generated class defines all four; only the one matching the root's
// activation type has a body.
type HookSet struct {
	FileItems       string // FILES, DIRECTORY and extensions
	BackgroundItems string // DIRECTORY_BACKGROUND and DESKTOP_BACKGROUND
	ToolbarItems    string // location bar, no file context
	DriveItems      string // DRIVE
}

// DefaultHooks returns the nautilus-python MenuProvider hook names.
func DefaultHooks() HookSet {
	return HookSet{
		FileItems:       "get_file_items",
		BackgroundItems: "get_background_items",
		ToolbarItems:    "get_toolbar_items",
		DriveItems:      "get_drive_items",
	}
}

// All returns the hook names in the order they are emitted.
func (h HookSet) All() []string {
	return []string{h.FileItems, h.BackgroundItems, h.ToolbarItems, h.DriveItems}
}

// For returns the hook that serves activation type a.
func (h HookSet) For(a menu.ActivationType) (string, error) {
	a, err := menu.ParseActivation(string(a))
	if err != nil {
		return "", fmt.Errorf("plugin: %w", err)
	}
	switch {
	case a.IsExtension():
		return h.FileItems, nil
	case a.IsBackground():
		return h.BackgroundItems, nil
	}
	switch a {
	case menu.Files, menu.Directory:
		return h.FileItems, nil
	case menu.Drive:
		return h.DriveItems, nil
	}
	return "", fmt.Errorf("plugin: %w: %q", menu.ErrUnknownActivation, a)
}

// ---------------------------------------------------------------------------
// Names
// ---------------------------------------------------------------------------

// SanitizeName turns a display name into a file-name stem: each
// whitespace-separated word is title-cased and the words are joined with
// no separator. Path separators are dropped.
func SanitizeName(name string) string {
	var sb strings.Builder
	for _, word := range strings.Fields(name) {
		sb.WriteString(title(word))
	}
	return strings.NewReplacer("/", "", `\`, "").Replace(sb.String())
}

// title upper-cases every letter that follows a non-letter and lower-cases
// the rest, so "it's-ok" becomes "It'S-Ok".
func title(word string) string {
	var sb strings.Builder
	prevLetter := false
	for _, r := range word {
		switch {
		case unicode.IsLetter(r) && !prevLetter:
			sb.WriteRune(unicode.ToTitle(r))
		case unicode.IsLetter(r):
			sb.WriteRune(unicode.ToLower(r))
		default:
			sb.WriteRune(r)
		}
		prevLetter = unicode.IsLetter(r)
	}
	return sb.String()
}

// ClassName returns a Python identifier for the provider class generated
// for a menu called name. GObject type names are process-wide, so a short
// hash of the display name keeps "A-b" and "A_b" apart.
func ClassName(name string) string {
	var sb strings.Builder
	for _, r := range SanitizeName(name) {
		if r == '_' || r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			sb.WriteRune(r)
			continue
		}
		sb.WriteRune('_')
	}
	ident := sb.String()
	if ident == "" || unicode.IsDigit(rune(ident[0])) {
		ident = "_" + ident
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return fmt.Sprintf("%sMenuProvider_%08x", ident, h.Sum32())
}
