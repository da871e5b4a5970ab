package merge

import (
	"bytes"
	"testing"
)

func TestRenderMarkers(t *testing.T) {
	got := RenderMarkers([]byte("y\n"), []byte("z\n"))
	want := []byte("<<<<<<< LOCAL\ny\n=======\nz\n>>>>>>> REMOTE\n")

	if !bytes.Equal(got, want) {
		t.Errorf("RenderMarkers() = %q, want %q", got, want)
	}
}

func TestRenderMarkersNoTrailingNewline(t *testing.T) {
	got := RenderMarkers([]byte("local"), []byte("remote"))
	want := []byte("<<<<<<< LOCAL\nlocal\n=======\nremote\n>>>>>>> REMOTE\n")

	if !bytes.Equal(got, want) {
		t.Errorf("RenderMarkers() = %q, want %q", got, want)
	}
}

func TestRenderMarkersDeletedSide(t *testing.T) {
	got := RenderMarkers(nil, []byte("remote\n"))
	want := []byte("<<<<<<< LOCAL\n(file deleted)\n=======\nremote\n>>>>>>> REMOTE\n")

	if !bytes.Equal(got, want) {
		t.Errorf("RenderMarkers() = %q, want %q", got, want)
	}
}

func TestRenderMarkersEmptyContent(t *testing.T) {
	// Empty but existing content is not a deletion.
	got := RenderMarkers([]byte{}, []byte("remote\n"))
	want := []byte("<<<<<<< LOCAL\n=======\nremote\n>>>>>>> REMOTE\n")

	if !bytes.Equal(got, want) {
		t.Errorf("RenderMarkers() = %q, want %q", got, want)
	}
}
