package lumen

import "strings"

// IconKind enumerates the badge icons content may reference by name.
type IconKind uint8

const (
	IconCertificate IconKind = iota // default for unknown names
	IconGraduate
	IconCode
	IconPython
	IconFastAPI
	IconNextJS
	IconDatabase
	IconMobile
	IconDocker
)

// iconNames maps the names stored by the content backend to icon kinds.
// Keys are lower-cased component names.
var iconNames = map[string]IconKind{
	"facertificate":  IconCertificate,
	"fausergraduate": IconGraduate,
	"facode":         IconCode,
	"fapython":       IconPython,
	"sifastapi":      IconFastAPI,
	"sinextdotjs":    IconNextJS,
	"fadatabase":     IconDatabase,
	"famobilealt":    IconMobile,
	"fadocker":       IconDocker,
}

var iconKindNames = [...]string{
	IconCertificate: "certificate",
	IconGraduate:    "graduate",
	IconCode:        "code",
	IconPython:      "python",
	IconFastAPI:     "fastapi",
	IconNextJS:      "nextjs",
	IconDatabase:    "database",
	IconMobile:      "mobile",
	IconDocker:      "docker",
}

// ParseIconKind resolves a content icon name such as "FaCode". Unknown or
// empty names return IconCertificate and ok=false.
func ParseIconKind(name string) (kind IconKind, ok bool) {
	kind, ok = iconNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return IconCertificate, false
	}
	return kind, true
}

func (k IconKind) String() string {
	if int(k) < len(iconKindNames) {
		return iconKindNames[k]
	}
	return iconKindNames[IconCertificate]
}
