// Package credentials derives account logins and one-time passwords for
// seated occupants, for printing on credential cards.
//
// Logins are the first letter of the first name followed by the last name,
// folded to lower-case ASCII:
//
//	credentials.Login("Éléonore", "Dupont-Moretti") // "edupontmoretti"
//
// [Issuer.Issue] keeps logins unique within one batch by appending 2, 3, ...
// to repeats.
package credentials

import (
	"crypto/rand"
	"io"
	"math/big"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/eduplan/seatplan/pkg/errors"
	"github.com/eduplan/seatplan/pkg/seating"
)

// Password alphabet without look-alike characters (0/O, 1/l/I).
const alphabet = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// DefaultPasswordLength is the length of generated passwords.
const DefaultPasswordLength = 10

// Credential is an occupant with the login and password printed on their card.
type Credential struct {
	Occupant seating.Occupant
	Login    string
	Password string
}

// Fold strips diacritics and lower-cases s ("Éloïse" becomes "eloise").
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Login derives a login from a name. Only ASCII letters and digits survive.
// An empty result becomes "user".
func Login(first, last string) string {
	var b strings.Builder
	first = asciiAlnum(Fold(first))
	if first != "" {
		b.WriteByte(first[0])
	}
	b.WriteString(asciiAlnum(Fold(last)))
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}

func asciiAlnum(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, s)
}

// Option configures an [Issuer].
type Option func(*Issuer)

// WithRandom sets the entropy source (default crypto/rand).
func WithRandom(r io.Reader) Option { return func(is *Issuer) { is.rand = r } }

// WithPasswordLength sets the generated password length.
func WithPasswordLength(n int) Option {
	return func(is *Issuer) {
		if n > 0 {
			is.length = n
		}
	}
}

// Issuer generates credentials.
type Issuer struct {
	rand   io.Reader
	length int
}

// NewIssuer returns an issuer reading from crypto/rand unless overridden.
func NewIssuer(opts ...Option) *Issuer {
	is := &Issuer{rand: rand.Reader, length: DefaultPasswordLength}
	for _, opt := range opts {
		opt(is)
	}
	return is
}

// Password returns a random password drawn uniformly from the alphabet.
func (is *Issuer) Password() (string, error) {
	limit := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, is.length)
	for i := range buf {
		n, err := rand.Int(is.rand, limit)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInternal, err, "generate password")
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf), nil
}

// Issue returns one credential per occupant, in input order. An occupant's
// stored login is kept; otherwise one is derived from the name. Repeated
// logins get a numeric suffix.
func (is *Issuer) Issue(occupants []seating.Occupant) ([]Credential, error) {
	taken := make(map[string]bool, len(occupants))
	out := make([]Credential, 0, len(occupants))
	for _, o := range occupants {
		login := strings.TrimSpace(o.Login)
		if login == "" {
			login = Login(o.FirstName, o.LastName)
		}
		login = unique(taken, login)

		pw, err := is.Password()
		if err != nil {
			return nil, err
		}
		out = append(out, Credential{Occupant: o, Login: login, Password: pw})
	}
	return out, nil
}

func unique(taken map[string]bool, base string) string {
	name := base
	for n := 2; taken[name]; n++ {
		name = base + strconv.Itoa(n)
	}
	taken[name] = true
	return name
}
