package merge

import (
	"bytes"
)

// Conflict-marker byte contract, consumed by downstream tooling. The
// baseline format has no ancestor section.
const (
	markerLocal   = "<<<<<<< LOCAL\n"
	markerSep     = "=======\n"
	markerRemote  = ">>>>>>> REMOTE\n"
	deletedMarker = "(file deleted)\n"
)

// RenderMarkers renders the git-style conflict representation of two
// competing versions. A nil side stands for a deleted file.
func RenderMarkers(localContent, remoteContent []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(markerLocal)
	writeSide(&buf, localContent)
	buf.WriteString(markerSep)
	writeSide(&buf, remoteContent)
	buf.WriteString(markerRemote)
	return buf.Bytes()
}

func writeSide(buf *bytes.Buffer, content []byte) {
	if content == nil {
		buf.WriteString(deletedMarker)
		return
	}
	buf.Write(content)
	if len(content) > 0 && content[len(content)-1] != '\n' {
		buf.WriteByte('\n')
	}
}
