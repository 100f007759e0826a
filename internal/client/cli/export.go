package cli

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/filex"
	"github.com/dmitrijs2005/passkeeper/internal/netx"
)

// downloadFn is a test seam for presigned downloads.
var downloadFn = netx.DownloadFromPresignedURL

// Export asks the server for an encrypted vault export, downloads it and
// saves it under the configured download directory. The file is an
// ASCII-armored age file; decrypt it with `age -d` and the passphrase.
func (a *App) Export(ctx context.Context) error {
	pass, err := getPassword("Export passphrase", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pass)

	confirm, err := getPassword("Repeat passphrase", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(pass, confirm) {
		return common.NewValidationError("passphrases do not match", "passphrase")
	}

	exp, err := a.api.Export(ctx, pass)
	if err != nil {
		return err
	}

	data, err := downloadFn(ctx, a.downloader, exp.URL)
	if err != nil {
		fmt.Fprintf(a.out, "Download failed, fetch it manually before %s:\n%s\n", exp.ExpiresAt.Local().Format(timeLayout), exp.URL)
		return err
	}

	dir, err := filex.EnsureSubDir(a.config.DownloadDir)
	if err != nil {
		return err
	}
	file, err := filex.WriteFile(dir, path.Base(exp.Key), data)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Exported %d credentials to %s\n", exp.Count, file)
	return nil
}
