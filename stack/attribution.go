package stack

import (
	"encoding/json"
	"fmt"
	"runtime"
)

// AttributionStorage records which tool created a unit and for what purpose.
type AttributionStorage interface {
	StoreAttributionMetadata(u *Unit, stackType string, libraryVersion string) error
}

type Attribution struct {
	CreatedOn   string         `json:"createdOn"`
	CreatedBy   string         `json:"createdBy"`
	CreatedWith string         `json:"createdWith"`
	StackType   string         `json:"stackType"`
	Metadata    map[string]any `json:"metadata"`
}

// DescriptionAttribution writes the attribution as a JSON description on the
// unit. A unit that already has a description is left untouched.
type DescriptionAttribution struct {
	CreatedBy string
}

func (a DescriptionAttribution) StoreAttributionMetadata(u *Unit, stackType string, libraryVersion string) error {
	if u.Description() != "" {
		return nil
	}

	createdBy := a.CreatedBy
	if createdBy == "" {
		createdBy = "stackwire"
	}

	raw, err := json.Marshal(Attribution{
		CreatedOn:   platformName(runtime.GOOS),
		CreatedBy:   createdBy,
		CreatedWith: libraryVersion,
		StackType:   stackType,
		Metadata:    map[string]any{},
	})
	if err != nil {
		return fmt.Errorf("encode attribution for %s: %w", u.Path(), err)
	}

	u.SetDescription(string(raw))
	return nil
}

// ParseAttribution decodes a description written by DescriptionAttribution.
func ParseAttribution(u *Unit) (Attribution, bool) {
	var a Attribution
	if err := json.Unmarshal([]byte(u.Description()), &a); err != nil || a.StackType == "" {
		return Attribution{}, false
	}
	return a, true
}

func platformName(goos string) string {
	switch goos {
	case "darwin":
		return "Mac"
	case "windows":
		return "Windows"
	case "linux":
		return "Linux"
	default:
		return "Other"
	}
}
