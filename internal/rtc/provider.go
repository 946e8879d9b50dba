// Package rtc mints join credentials for real-time channels.
//
// The matchmaking engine only depends on the Provider interface; the Agora
// token builder behind it is an implementation detail. A mint failure never
// fails a pairing: callers fall back to a deterministic placeholder token.
package rtc

import (
	"context"
	"fmt"
	"time"

	rtctokenbuilder "github.com/AgoraIO-Community/go-tokenbuilder/rtctokenbuilder2"
)

// TokenTTL is how long a minted credential stays valid. The engine does not
// track or renew credentials after issuance.
const TokenTTL = time.Hour

// Provider mints a join credential for one participant slot of a channel.
type Provider interface {
	Mint(ctx context.Context, channelID string, uid uint32) (string, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, channelID string, uid uint32) (string, error)

func (f ProviderFunc) Mint(ctx context.Context, channelID string, uid uint32) (string, error) {
	return f(ctx, channelID, uid)
}

// AgoraProvider mints RTC tokens using the Agora dynamic key builder.
type AgoraProvider struct {
	appID          string
	appCertificate string
}

// NewAgoraProvider creates a provider for the given Agora project.
func NewAgoraProvider(appID, appCertificate string) (*AgoraProvider, error) {
	if appID == "" || appCertificate == "" {
		return nil, fmt.Errorf("agora app id and certificate are required")
	}
	return &AgoraProvider{appID: appID, appCertificate: appCertificate}, nil
}

// AppID returns the Agora project identifier callers need alongside a token.
func (p *AgoraProvider) AppID() string { return p.appID }

// Mint builds a publisher token for uid in channelID, valid for TokenTTL.
func (p *AgoraProvider) Mint(_ context.Context, channelID string, uid uint32) (string, error) {
	token, err := rtctokenbuilder.BuildTokenWithUid(
		p.appID, p.appCertificate, channelID, uid,
		rtctokenbuilder.RolePublisher, uint32(TokenTTL.Seconds()))
	if err != nil {
		return "", fmt.Errorf("failed to build rtc token for channel %s uid %d: %w", channelID, uid, err)
	}
	return token, nil
}

// PlaceholderToken is the deterministic fallback credential used when the
// provider fails or times out. Clearly marked so clients can tell it apart
// from a real token.
func PlaceholderToken(channelID string, uid uint32) string {
	return fmt.Sprintf("placeholder-token-%s-%d", channelID, uid)
}
