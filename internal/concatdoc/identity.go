package concatdoc

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"path"
	"strings"
)

const concatHashLen = 12

// Identity holds the two synthetic identifiers a concat document acquires
// on its first observed cell. It is sticky until a Refresh, or the closing
// of the interactive input cell, clears the engine's reference to it.
type Identity struct {
	ConcatURI   string
	NotebookURI string
}

// deriveIdentity computes both identifiers from the first cell the engine
// ever sees.
func deriveIdentity(firstCell CellID) Identity {
	return Identity{
		ConcatURI:   deriveConcatURI(firstCell),
		NotebookURI: deriveNotebookURI(firstCell),
	}
}

func deriveConcatURI(firstCell CellID) string {
	p := firstCell.Path()
	sum := sha1.Sum([]byte(p))
	hash := hex.EncodeToString(sum[:])[:concatHashLen]
	dir := path.Dir(p)
	base := "_NotebookConcat_" + hash + ".py"
	return path.Join(dir, base)
}

func deriveNotebookURI(cell CellID) string {
	u, err := url.Parse(cell.URI)
	if err != nil {
		return cell.URI
	}
	switch {
	case u.Scheme == SchemeInteractiveInput:
		u.Scheme = SchemeInteractive
		u.Fragment = ""
	case strings.Contains(u.Fragment, "untitled"):
		u.Scheme = SchemeUntitled
		u.Fragment = ""
		u.RawQuery = ""
	default:
		u = &url.URL{Scheme: SchemeFile, Path: u.Path}
	}
	return u.String()
}
