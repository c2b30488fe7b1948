package credential

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yeqown/go-qrcode"
)

// Renderer turns a credential payload into a scannable image.
type Renderer interface {
	Render(ctx context.Context, payload string) ([]byte, error)
}

// QRRenderer renders PNG QR codes.
type QRRenderer struct {
	BlockWidth uint8
}

func NewQRRenderer() *QRRenderer {
	return &QRRenderer{BlockWidth: 10}
}

func (r *QRRenderer) Render(ctx context.Context, payload string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	qrc, err := qrcode.New(payload,
		qrcode.WithBuiltinImageEncoder(qrcode.PNG_FORMAT),
		qrcode.WithQRWidth(r.BlockWidth),
	)
	if err != nil {
		return nil, fmt.Errorf("could not encode qrcode: %w", err)
	}
	var buf bytes.Buffer
	if err := qrc.SaveTo(&buf); err != nil {
		return nil, fmt.Errorf("could not render qrcode: %w", err)
	}
	return buf.Bytes(), nil
}

// CachedRenderer keeps rendered images in redis. Cache errors fall through
// to the inner renderer.
type CachedRenderer struct {
	inner Renderer
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedRenderer(inner Renderer, rdb *redis.Client, ttl time.Duration) *CachedRenderer {
	return &CachedRenderer{inner: inner, rdb: rdb, ttl: ttl}
}

func cacheKey(payload string) string {
	return fmt.Sprintf("credential::%s:qrcode", payload)
}

func (r *CachedRenderer) Render(ctx context.Context, payload string) ([]byte, error) {
	key := cacheKey(payload)
	cached, err := r.rdb.Get(ctx, key).Bytes()
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, redis.Nil) {
		log.Printf("[redis] Error reading cached qrcode %s: %s\n", key, err.Error())
	}
	img, err := r.inner.Render(ctx, payload)
	if err != nil {
		return nil, err
	}
	if err := r.rdb.SetEx(ctx, key, img, r.ttl).Err(); err != nil {
		log.Printf("[redis] Error caching qrcode %s: %s\n", key, err.Error())
	}
	return img, nil
}
