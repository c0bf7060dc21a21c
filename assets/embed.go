package assets

import (
	"embed"
	"io/fs"
)

//go:embed themes.txt sql/*.sql
var FS embed.FS

// ThemesText returns the embedded default catalog.
func ThemesText() (string, error) {
	b, err := FS.ReadFile("themes.txt")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Migrations returns the embedded SQL migrations rooted at sql/.
func Migrations() fs.FS {
	sub, err := fs.Sub(FS, "sql")
	if err != nil {
		// the pattern above guarantees the directory exists
		panic(err)
	}
	return sub
}
