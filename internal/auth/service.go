package auth

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"runera-client/internal/api"
	"runera-client/internal/wallet"

	"github.com/golang-jwt/jwt/v5"
)

// ErrAuthUnavailable: no session credential could be established. The
// condition is non-fatal; callers proceed local-only.
var ErrAuthUnavailable = errors.New("authentication unavailable")

var nowFn = time.Now

// Claims embedded in the backend session token.
type Claims struct {
	WalletAddress string `json:"walletAddress"`
	jwt.RegisteredClaims
}

// Backend is the slice of the API client the authenticator uses.
type Backend interface {
	RequestNonce(ctx context.Context, walletAddress string) (api.NonceResponse, error)
	Connect(ctx context.Context, req api.ConnectRequest) (api.ConnectResponse, error)
}

// TokenStore persists the session token keyed by wallet address.
type TokenStore interface {
	Get(ctx context.Context, walletAddress string) (string, error)
	Set(ctx context.Context, walletAddress, token string) error
	Clear(ctx context.Context, walletAddress string) error
}

type inflight struct {
	done  chan struct{}
	token string
	err   error
}

// Service obtains and caches the signed session credential bound to
// the active wallet. Concurrent establishment attempts for one wallet
// coalesce into a single nonce/sign/connect round trip.
type Service struct {
	backend Backend
	signer  wallet.Signer
	store   TokenStore

	mu      sync.Mutex
	pending map[string]*inflight
}

func NewService(backend Backend, signer wallet.Signer, store TokenStore) *Service {
	return &Service{
		backend: backend,
		signer:  signer,
		store:   store,
		pending: map[string]*inflight{},
	}
}

// EnsureToken returns a session token valid for the active wallet,
// reusing the cached one when its embedded wallet and expiry still
// hold, re-running the nonce/sign/connect protocol otherwise.
func (s *Service) EnsureToken(ctx context.Context) (string, error) {
	walletAddr := s.signer.Address()
	if walletAddr == "" {
		return "", ErrAuthUnavailable
	}
	key := strings.ToLower(walletAddr)

	if cached, err := s.store.Get(ctx, key); err == nil && cached != "" {
		if s.tokenValidFor(cached, walletAddr) {
			return cached, nil
		}
		log.Printf("cached session token invalid for %s, clearing", walletAddr)
		_ = s.store.Clear(ctx, key)
	}

	s.mu.Lock()
	if flight, ok := s.pending[key]; ok {
		s.mu.Unlock()
		select {
		case <-flight.done:
			return flight.token, flight.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	flight := &inflight{done: make(chan struct{})}
	s.pending[key] = flight
	s.mu.Unlock()

	token, err := s.establish(ctx, walletAddr)
	flight.token, flight.err = token, err
	close(flight.done)

	s.mu.Lock()
	delete(s.pending, key)
	s.mu.Unlock()

	return token, err
}

// Authenticated reports whether a valid credential is cached for the
// active wallet, without triggering the protocol.
func (s *Service) Authenticated(ctx context.Context) bool {
	walletAddr := s.signer.Address()
	if walletAddr == "" {
		return false
	}
	cached, err := s.store.Get(ctx, strings.ToLower(walletAddr))
	return err == nil && cached != "" && s.tokenValidFor(cached, walletAddr)
}

func (s *Service) WalletAddress() string {
	return s.signer.Address()
}

func (s *Service) establish(ctx context.Context, walletAddr string) (string, error) {
	nonce, err := s.backend.RequestNonce(ctx, walletAddr)
	if err != nil {
		log.Printf("nonce request failed: %v", err)
		return "", ErrAuthUnavailable
	}

	signature, err := s.signer.SignMessage(ctx, nonce.Message)
	if err != nil {
		log.Printf("wallet signing failed: %v", err)
		return "", ErrAuthUnavailable
	}

	resp, err := s.backend.Connect(ctx, api.ConnectRequest{
		WalletAddress: walletAddr,
		Signature:     signature,
		Message:       nonce.Message,
		Nonce:         nonce.Nonce,
	})
	if err != nil || resp.Token == "" {
		log.Printf("session exchange failed: %v", err)
		return "", ErrAuthUnavailable
	}

	if err := s.store.Set(ctx, strings.ToLower(walletAddr), resp.Token); err != nil {
		log.Printf("token persist failed: %v", err)
	}
	return resp.Token, nil
}

// tokenValidFor decodes the unverified claims: the client holds no
// signing secret, so validity here means wallet match and unexpired.
func (s *Service) tokenValidFor(token, walletAddr string) bool {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	if !strings.EqualFold(claims.WalletAddress, walletAddr) {
		return false
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(nowFn()) {
		return false
	}
	return true
}
