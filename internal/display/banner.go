package display

import (
	"fmt"
	"io"

	"github.com/backmassage/heicmaster/internal/term"
)

const banner = ` _          _                         _
| |__   ___(_) ___ _ __ ___   __ _ ___| |_ ___ _ __
| '_ \ / _ \ |/ __| '_ ` + "`" + ` _ \ / _` + "`" + ` / __| __/ _ \ '__|
| | | |  __/ | (__| | | | | | (_| \__ \ ||  __/ |
|_| |_|\___|_|\___|_| |_| |_|\__,_|___/\__\___|_|
`

// PrintBanner writes the ASCII banner and version line to w, in magenta when
// colors are enabled.
func PrintBanner(w io.Writer, version string) {
	fmt.Fprint(w, term.Paint(term.Magenta, banner))
	fmt.Fprintf(w, "  v%s  HEIC/HEIF batch converter\n\n", version)
}
