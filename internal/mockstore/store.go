// Package mockstore is a local stand-in for AWS Secrets Manager. It speaks
// enough of the JSON protocol for GetSecretValue so the real SDK client can
// run against it in local mode and in tests.
package mockstore

import (
	"encoding/base64"
	"errors"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"vinr.eu/secretsdemo/internal/errs"
)

var (
	ErrReadSeed   = errors.New("mockstore: read seed failed")
	ErrDecodeSeed = errors.New("mockstore: decode seed failed")
	ErrBadBinary  = errors.New("mockstore: binary secret is not base64")
)

// Seed is the on-disk layout of a seed file:
//
//	secrets:
//	  service/test/infra/iduck: '{"username":"admin"}'
//	binary:
//	  blob/id: aGVsbG8=
//	deny:
//	  - locked/id
type Seed struct {
	Secrets map[string]string `yaml:"secrets"`
	Binary  map[string]string `yaml:"binary"`
	Deny    []string          `yaml:"deny"`
}

type secret struct {
	text   *string
	binary *string
}

type Store struct {
	region    string
	secrets   map[string]secret
	denied    map[string]struct{}
	lookupEnv func(string) (string, bool)
}

type Option func(*Store)

func WithRegion(region string) Option {
	return func(s *Store) {
		s.region = region
	}
}

// WithEnv makes ids not present in the seed resolve from SECRET_<ID> variables.
func WithEnv(lookup func(string) (string, bool)) Option {
	return func(s *Store) {
		s.lookupEnv = lookup
	}
}

func NewStore(seed Seed, opts ...Option) (*Store, error) {
	s := &Store{
		region:  "us-east-1",
		secrets: make(map[string]secret, len(seed.Secrets)+len(seed.Binary)),
		denied:  make(map[string]struct{}, len(seed.Deny)),
	}
	for _, opt := range opts {
		opt(s)
	}
	for id, v := range seed.Secrets {
		v := v
		s.secrets[id] = secret{text: &v}
	}
	for id, v := range seed.Binary {
		v := v
		if _, err := base64.StdEncoding.DecodeString(v); err != nil {
			return nil, errs.WrapMsgErr(ErrBadBinary, id, err)
		}
		s.secrets[id] = secret{binary: &v}
	}
	for _, id := range seed.Deny {
		id = strings.TrimSpace(id)
		if id != "" {
			s.denied[id] = struct{}{}
		}
	}
	return s, nil
}

func LoadSeedFile(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, errs.WrapMsgErr(ErrReadSeed, path, err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, errs.WrapMsgErr(ErrDecodeSeed, path, err)
	}
	return seed, nil
}

// EnvKey maps a secret id to the variable consulted by WithEnv.
func EnvKey(id string) string {
	r := strings.NewReplacer("-", "_", "/", "_", ".", "_")
	return "SECRET_" + strings.ToUpper(r.Replace(id))
}

func (s *Store) isDenied(id string) bool {
	_, ok := s.denied[id]
	return ok
}

func (s *Store) lookup(id string) (secret, bool) {
	if sec, ok := s.secrets[id]; ok {
		return sec, true
	}
	if s.lookupEnv != nil {
		if v, ok := s.lookupEnv(EnvKey(id)); ok {
			return secret{text: &v}, true
		}
	}
	return secret{}, false
}

func (s *Store) arn(id string) string {
	return "arn:aws:secretsmanager:" + s.region + ":000000000000:secret:" + id
}
