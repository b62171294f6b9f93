package shortener

import (
	"context"
	"errors"
	"strings"
)

// DefaultBaseURL is prepended to codes to build short URLs.
const DefaultBaseURL = "https://short-url/"

// DefaultMaxAttempts bounds the random-code retry loop in Create.
const DefaultMaxAttempts = 1000

// Recorder observes the outcome of create attempts.
type Recorder interface {
	Created(custom bool)
	Collision()
	Exhausted()
}

type nopRecorder struct{}

func (nopRecorder) Created(bool) {}
func (nopRecorder) Collision()   {}
func (nopRecorder) Exhausted()   {}

// Config holds the Service settings. Zero values fall back to defaults.
type Config struct {
	Alphabet    Alphabet
	BaseURL     string
	MaxAttempts int
	Recorder    Recorder
}

// Service creates, resolves, lists and deletes owner-scoped mappings.
type Service struct {
	repo         Repository
	generateCode CodeGenerator
	alphabet     Alphabet
	baseURL      string
	maxAttempts  int
	recorder     Recorder
}

// NewService creates a new mapping service.
func NewService(repo Repository, generator CodeGenerator, cfg Config) *Service {
	if cfg.Alphabet.Length == 0 {
		cfg.Alphabet = DefaultAlphabet()
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}

	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}

	return &Service{
		repo:         repo,
		generateCode: generator,
		alphabet:     cfg.Alphabet,
		baseURL:      cfg.BaseURL,
		maxAttempts:  cfg.MaxAttempts,
		recorder:     cfg.Recorder,
	}
}

// Create registers longURL for owner. When desired is empty a random code is
// generated, retrying on collisions until one is free for the owner.
func (s *Service) Create(ctx context.Context, owner OwnerID, longURL string, desired Code) (*Mapping, error) {
	if owner == "" {
		return nil, ErrUnauthorized
	}

	if strings.TrimSpace(longURL) == "" {
		return nil, ErrEmptyURL
	}

	if desired != "" {
		return s.createCustom(ctx, owner, longURL, desired)
	}

	for range s.maxAttempts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		m := newMapping(owner, longURL, Code(s.generateCode()))

		err := s.repo.Insert(ctx, m)
		if err == nil {
			s.recorder.Created(false)

			return m, nil
		}

		if !errors.Is(err, ErrCodeAlreadyTaken) {
			return nil, storageError(err)
		}

		s.recorder.Collision()
	}

	s.recorder.Exhausted()

	return nil, ErrCodeSpaceExhausted
}

func (s *Service) createCustom(ctx context.Context, owner OwnerID, longURL string, code Code) (*Mapping, error) {
	if err := s.alphabet.Validate(code); err != nil {
		return nil, err
	}

	m := newMapping(owner, longURL, code)

	if err := s.repo.Insert(ctx, m); err != nil {
		if errors.Is(err, ErrCodeAlreadyTaken) {
			return nil, ErrCodeAlreadyTaken
		}

		return nil, storageError(err)
	}

	s.recorder.Created(true)

	return m, nil
}

// Resolve returns the long URL the owner registered under codeOrURL.
func (s *Service) Resolve(ctx context.Context, owner OwnerID, codeOrURL string) (string, error) {
	m, err := s.Lookup(ctx, owner, codeOrURL)
	if err != nil {
		return "", err
	}

	return m.LongURL, nil
}

// Lookup returns the owner's mapping for codeOrURL, which may be a bare code
// or a full short URL.
func (s *Service) Lookup(ctx context.Context, owner OwnerID, codeOrURL string) (*Mapping, error) {
	if owner == "" {
		return nil, ErrUnauthorized
	}

	code := s.ParseCode(codeOrURL)
	if code == "" {
		return nil, ErrEmptyCode
	}

	m, err := s.repo.Get(ctx, owner, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, storageError(err)
	}

	return m, nil
}

// List returns every mapping of owner in creation order.
func (s *Service) List(ctx context.Context, owner OwnerID) ([]*Mapping, error) {
	if owner == "" {
		return nil, ErrUnauthorized
	}

	mappings, err := s.repo.List(ctx, owner)
	if err != nil {
		return nil, storageError(err)
	}

	if mappings == nil {
		mappings = []*Mapping{}
	}

	return mappings, nil
}

// Delete permanently removes the owner's mapping for codeOrURL.
// Mappings of other owners are never touched; they report ErrNotFound.
func (s *Service) Delete(ctx context.Context, owner OwnerID, codeOrURL string) error {
	if owner == "" {
		return ErrUnauthorized
	}

	code := s.ParseCode(codeOrURL)
	if code == "" {
		return ErrEmptyCode
	}

	if err := s.repo.Delete(ctx, owner, code); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}

		return storageError(err)
	}

	return nil
}

// ShortURL builds the presentation URL for code.
func (s *Service) ShortURL(code Code) string {
	return s.baseURL + string(code)
}

// ParseCode accepts a bare code or a short URL built by ShortURL and returns the code.
func (s *Service) ParseCode(codeOrURL string) Code {
	v := strings.TrimSpace(codeOrURL)
	v = strings.TrimPrefix(v, s.baseURL)

	return Code(strings.Trim(v, "/"))
}
