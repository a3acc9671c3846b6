package files

import "github.com/designsafe-ci/dapi/api-types/misc/tapistime"

// types of FileInfo
const (
	TypeFile = "file"
	TypeDir  = "dir"
)

// FileInfo is an item of file listings.
type FileInfo struct {
	Name              string         `json:"name"`
	Path              string         `json:"path"`
	Type              string         `json:"type"`
	Size              int64          `json:"size"`
	MimeType          string         `json:"mimeType,omitempty"`
	Owner             string         `json:"owner,omitempty"`
	Group             string         `json:"group,omitempty"`
	NativePermissions string         `json:"nativePermissions,omitempty"`
	Url               string         `json:"url,omitempty"`
	LastModified      tapistime.Time `json:"lastModified"`
}

func (fi FileInfo) IsDir() bool {
	return fi.Type == TypeDir
}
