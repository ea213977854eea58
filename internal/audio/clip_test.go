package audio

import (
	"testing"
)

func TestPlayheadStaleCommitIgnored(t *testing.T) {
	var p playhead

	pos, gen := p.load()
	if pos != 0 {
		t.Fatalf("new playhead at %d", pos)
	}
	p.commit(1920, gen)
	if pos, _ := p.load(); pos != 1920 {
		t.Fatalf("commit not applied, pos = %d", pos)
	}

	_, gen = p.load()
	p.reset()
	p.commit(3840, gen)
	if pos, _ := p.load(); pos != 0 {
		t.Errorf("stale commit overwrote reset, pos = %d", pos)
	}
}

func TestClipViewsAreStable(t *testing.T) {
	var c clip
	c.append([]byte{1, 2, 3})
	view := c.view()

	c.append([]byte{4, 5})
	c.replace([]byte{9, 9, 9, 9})
	c.reset()

	if string(view) != string([]byte{1, 2, 3}) {
		t.Errorf("view changed to %v", view)
	}
	if c.len() != 0 {
		t.Errorf("reset left %d bytes", c.len())
	}
}

func TestClipSnapshotIsCopy(t *testing.T) {
	var c clip
	c.append([]byte{1, 2})
	snap := c.snapshot()
	snap[0] = 7
	if c.view()[0] != 1 {
		t.Error("snapshot aliases the clip")
	}
}
