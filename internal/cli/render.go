package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jeffijoe/typesync/pkg/typesync"
)

// renderer prints the outcome of a sync run.
type renderer struct {
	w       io.Writer
	dry     dryMode
	verbose bool // also list declared typings nothing uses
}

func (r renderer) result(res *typesync.Result) {
	total := res.NewTypingsCount()

	switch {
	case total == 0:
		printSuccess(r.w, "No new typings to add, looks like you're all synced up!")
		if r.verbose {
			r.files(res)
		}
	case r.dry == dryFail:
		printError(r.w, "%d new typings are missing.", total)
		r.files(res)
		printNextStep(r.w, "Run "+command("typesync")+" again without the "+styleMuted.Render("--dry")+" flag to update your "+styleMuted.Render("package.json")+".")
	case r.dry == dryOn:
		printSuccess(r.w, "%d new typings can be added.", total)
		r.files(res)
		printNextStep(r.w, "Run "+command("typesync")+" again without the "+styleMuted.Render("--dry")+" flag to update your "+styleMuted.Render("package.json")+".")
	default:
		printSuccess(r.w, "%d new typings added.", total)
		r.files(res)
		printNextStep(r.w, "Go ahead and run "+command("npm install")+", "+command("yarn")+", or "+command("pnpm i")+" to install the packages that were added.")
	}
}

func (r renderer) files(res *typesync.Result) {
	for _, f := range res.SyncedFiles {
		printNewline(r.w)
		fmt.Fprintln(r.w, r.file(f))
	}
	printNewline(r.w)
}

// file renders one manifest as a title line followed by a tree of added
// typings.
func (r renderer) file(f typesync.SyncedFile) string {
	var b strings.Builder

	badge := styleTyping.Render("(no new typings added)")
	if n := len(f.NewTypings); n > 0 {
		badge = styleAdded.Render(fmt.Sprintf("(%d new typings added)", n))
	}
	fmt.Fprintf(&b, "%s %s %s %s", iconPackage, packageName(f), stylePath.Render("— "+f.FilePath), badge)

	for i, t := range f.NewTypings {
		node := iconBranch
		if i == len(f.NewTypings)-1 {
			node = iconLeaf
		}
		fmt.Fprintf(&b, "\n%s %s %s%s", node, styleAdded.Render("+"), styleMuted.Render("@types/"), styleTyping.Render(t.TypingsName))
	}

	if r.verbose {
		for _, name := range f.UnusedTypings {
			fmt.Fprintf(&b, "\n   %s", styleWarning.Render(name+" has no matching dependency"))
		}
	}
	return b.String()
}

// packageName is the manifest's name, or the name of its directory when the
// manifest has none.
func packageName(f typesync.SyncedFile) string {
	if f.Manifest != nil {
		if name := f.Manifest.Name(); name != "" {
			return name
		}
	}
	path := f.FilePath
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return filepath.Base(filepath.Dir(path))
}
