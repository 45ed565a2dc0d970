package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/cuivault/internal/common"
	"github.com/dmitrijs2005/cuivault/internal/cryptox"
	"github.com/dmitrijs2005/cuivault/internal/filex"
	"github.com/dmitrijs2005/cuivault/pkg/vaultclient"
	"github.com/dustin/go-humanize"
)

func (a *App) keygen(args []string) error {
	if len(args) != 0 {
		return a.usageError("keygen takes no arguments")
	}
	key, err := cryptox.GenerateHexKey()
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, key)
	return nil
}

func (a *App) mintUpload(args []string) error {
	if len(args) != 0 {
		return a.usageError("mint-upload takes no arguments")
	}
	iss, err := a.issuer()
	if err != nil {
		return err
	}
	g, err := iss.MintUpload()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "url:     %s\ntoken:   %s\nexpires: %s\n", g.URL, g.Token, g.ExpiresAt.UTC().Format(time.RFC3339))
	return nil
}

func (a *App) mintView(args []string) error {
	if len(args) != 1 {
		return a.usageError("mint-view needs <id>")
	}
	iss, err := a.issuer()
	if err != nil {
		return err
	}
	g, err := iss.MintView(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "url:     %s\nexpires: %s\n", g.URL, g.ExpiresAt.UTC().Format(time.RFC3339))
	return nil
}

func (a *App) upload(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return a.usageError("upload needs <file> [mime]")
	}
	path := args[0]

	mimeType := ""
	if len(args) == 2 {
		mimeType = args[1]
	} else if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		mimeType, _, _ = strings.Cut(t, ";")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	iss, err := a.issuer()
	if err != nil {
		return err
	}
	g, err := iss.MintUpload()
	if err != nil {
		return err
	}
	cl, err := a.client()
	if err != nil {
		return err
	}

	rec, err := cl.Upload(ctx, g.Token, filepath.Base(path), mimeType, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "vault id: %s\nsha256:   %s\nsize:     %s\nmime:     %s\ncreated:  %s\n",
		rec.VaultID, rec.SHA256, humanize.Bytes(uint64(rec.Size)), rec.MimeType, rec.CreatedAt.UTC().Format(time.RFC3339))
	return nil
}

func (a *App) view(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return a.usageError("view needs <id> [out]")
	}
	id := args[0]

	iss, err := a.issuer()
	if err != nil {
		return err
	}
	g, err := iss.MintView(id)
	if err != nil {
		return err
	}
	cl, err := a.client()
	if err != nil {
		return err
	}

	doc, err := cl.View(ctx, id, g.Token)
	if vaultclient.IsNotFound(err) {
		return fmt.Errorf("record %s does not exist or was deleted: %w", id, err)
	}
	if err != nil {
		return err
	}
	defer common.WipeByteArray(doc.Content)

	if len(args) == 1 {
		_, err = a.out.Write(doc.Content)
		return err
	}
	if err := filex.WritePrivateFile(args[1], doc.Content); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "wrote %s (%s) to %s\n", humanize.Bytes(uint64(len(doc.Content))), doc.MimeType, args[1])
	return nil
}

func (a *App) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usageError("delete needs <id>")
	}
	id := args[0]

	answer, err := GetSimpleText(a.reader, fmt.Sprintf("Delete record %s? This cannot be undone [y/N]", id), a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		fmt.Fprintln(a.out, "aborted")
		return nil
	}

	secret, err := a.secret(a.config.AdminSecret, "Admin secret")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(secret)

	cl, err := a.client()
	if err != nil {
		return err
	}
	removed, err := cl.Delete(ctx, id, string(secret))
	if err != nil {
		return err
	}
	if removed {
		fmt.Fprintln(a.out, "deleted")
	} else {
		fmt.Fprintln(a.out, "not found")
	}
	return nil
}

func (a *App) health(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return a.usageError("health takes no arguments")
	}
	cl, err := a.client()
	if err != nil {
		return err
	}
	if err := cl.Health(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "ok")
	return nil
}
