package transfer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeFileNameAcceptsPlainName(t *testing.T) {
	name, err := SanitizeFileName("report.pdf")
	require.NoError(t, err)
	require.Equal(t, "report.pdf", name)
}

func TestSanitizeFileNameRejectsTraversal(t *testing.T) {
	cases := []string{"../../etc/passwd", "..", "a/../b", "sub/dir/file.txt", `win\path.txt`, ""}
	for _, c := range cases {
		_, err := SanitizeFileName(c)
		require.Errorf(t, err, "expected rejection for %q", c)
	}
}
