package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-core/internal/domain/apperror"
	"github.com/oksasatya/go-account-core/internal/domain/entity"
	"github.com/oksasatya/go-account-core/internal/domain/repository"
	"github.com/oksasatya/go-account-core/pkg/helpers"
)

const (
	// AvatarDir is the public path prefix avatars are served under.
	AvatarDir = "avatars"
	// MaxSourcePixels bounds the decoded upload, checked from the header
	// before any pixel data is allocated.
	MaxSourcePixels = 40_000_000
)

// AssetStore persists a finished asset. Put must be all-or-nothing: a reader
// never observes a partially written name.
type AssetStore interface {
	Put(ctx context.Context, name string, data []byte, contentType string) error
}

// Upload is a file already saved to temporary storage by the transport.
type Upload struct {
	TempPath     string
	OriginalName string
}

type AvatarPipeline struct {
	repo   repository.UserRepository
	store  AssetStore
	size   int
	logger *logrus.Logger
}

func NewAvatarPipeline(repo repository.UserRepository, store AssetStore, size int, logger *logrus.Logger) *AvatarPipeline {
	if size <= 0 {
		size = 250
	}
	return &AvatarPipeline{repo: repo, store: store, size: size, logger: logger}
}

// Process runs decode, resize, store, then record update. The record is only
// touched once the asset is in place, so any earlier failure leaves the
// previous avatar referenced and intact.
func (p *AvatarPipeline) Process(ctx context.Context, userID string, up *Upload) (string, error) {
	if up == nil || up.TempPath == "" {
		return "", apperror.BadRequest("File not found")
	}

	raw, err := os.ReadFile(up.TempPath)
	if err != nil {
		return "", apperror.Internal(fmt.Errorf("read upload: %w", err))
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", apperror.UnprocessableImage("File is not a supported image")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return "", apperror.UnprocessableImage("Image dimensions are too large")
	}
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", apperror.UnprocessableImage("File is not a supported image")
	}

	out, contentType, err := p.normalize(img, format)
	if err != nil {
		return "", apperror.Internal(err)
	}

	name := userID + "_" + assetName(up.OriginalName)
	if err := p.store.Put(ctx, name, out, contentType); err != nil {
		return "", apperror.Internal(fmt.Errorf("store avatar: %w", err))
	}
	if err := os.Remove(up.TempPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		helpers.LogError(p.logger, "remove temp upload", err, logrus.Fields{"path": up.TempPath})
	}

	avatarURL := AvatarDir + "/" + name
	if _, err := p.repo.Update(ctx, userID, entity.UserPatch{AvatarURL: &avatarURL}); err != nil {
		return "", storeError(err)
	}
	return avatarURL, nil
}

// assetName reduces an uploaded filename to a single path element that is
// safe on any filesystem or object store.
func assetName(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	base = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == 0:
			return '_'
		case r < 0x20:
			return -1
		}
		return r
	}, base)
	if base == "" || base == "." || base == ".." || base == "/" {
		return "avatar"
	}
	return base
}

// normalize resizes to the configured square and re-encodes in the source
// format, falling back to PNG for formats imaging cannot write.
func (p *AvatarPipeline) normalize(img image.Image, format string) ([]byte, string, error) {
	resized := imaging.Resize(img, p.size, p.size, imaging.Lanczos)

	f, err := imaging.FormatFromExtension(format)
	if err != nil {
		f = imaging.PNG
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, f); err != nil {
		return nil, "", fmt.Errorf("encode avatar: %w", err)
	}
	return buf.Bytes(), contentTypes[f], nil
}

var contentTypes = map[imaging.Format]string{
	imaging.JPEG: "image/jpeg",
	imaging.PNG:  "image/png",
	imaging.GIF:  "image/gif",
	imaging.TIFF: "image/tiff",
	imaging.BMP:  "image/bmp",
}
