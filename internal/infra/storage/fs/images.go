package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"roomfinder/internal/app/policies"
)

// TokenPrefix is what the front-end expects in front of a room number.
const TokenPrefix = "room_picture_"

// ImageResolver looks for <Dir>/<room_no>.jpg on local disk.
type ImageResolver struct {
	Dir string
}

func (r ImageResolver) ImageToken(_ context.Context, roomNo string) string {
	roomNo = strings.TrimSpace(roomNo)
	if r.Dir == "" || roomNo == "" || strings.ContainsAny(roomNo, `/\`) {
		return ""
	}
	info, err := os.Stat(filepath.Join(r.Dir, roomNo+".jpg"))
	if err != nil || info.IsDir() {
		return ""
	}
	return TokenPrefix + roomNo
}

var _ policies.ImageResolver = ImageResolver{}
