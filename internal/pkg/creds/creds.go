package creds

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/jake-scott/lifx-cloud/internal/pkg/logging"
)

/*
 *  Creds is a LIFX personal access token and where it came from.  Tokens are
 *  created on the LIFX cloud web site; this package only stores them.
 */
type Creds struct {
	accessToken string
	savedAt     time.Time
	fileName    string
	ctx         context.Context
}

// Version of Creds that we marshal/unmarshal
type credsMarshal struct {
	AccessToken string    `json:"access-token"`
	SavedAt     time.Time `json:"saved-at"`
}

var ErrNoToken = errors.New("no access token configured")

func hashOf(s string) string {
	if s == "" {
		return ""
	}
	sum := sha1.Sum([]byte(s))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// obfuscate the token when stringified
func (c Creds) String() string {
	return fmt.Sprintf("accessToken [%s]  savedAt [%s]  file [%s]",
		hashOf(c.accessToken), c.savedAt.Format(time.RFC3339), c.fileName)
}

func New(token string) Creds {
	return Creds{accessToken: token, ctx: context.Background()}
}

func (c Creds) WithContext(ctx context.Context) Creds {
	c.ctx = ctx
	return c
}

func (c Creds) AccessToken() string {
	return c.accessToken
}

func (c Creds) FileName() string {
	return c.fileName
}

// Token implements oauth2.TokenSource
func (c Creds) Token() (*oauth2.Token, error) {
	if c.accessToken == "" {
		return nil, ErrNoToken
	}

	return &oauth2.Token{AccessToken: c.accessToken, TokenType: "Bearer"}, nil
}

// TokenSource returns the credentials as something the API client can use
func (c Creds) TokenSource() oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, c)
}

func (c *Creds) Save(fileName string) error {
	if c.accessToken == "" {
		return ErrNoToken
	}

	cm := credsMarshal{
		AccessToken: c.accessToken,
		SavedAt:     time.Now().UTC(),
	}

	// the token grants full control of the account
	file, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errors.Wrapf(err, "opening token file %s for write", fileName)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cm); err != nil {
		return errors.Wrapf(err, "saving token to %s", fileName)
	}

	c.savedAt = cm.SavedAt
	c.fileName = fileName

	logging.Logger(c.ctx).Debugf("saved credentials: %s", c)
	return nil
}

func (c *Creds) Load(fileName string) error {
	cm := credsMarshal{}

	file, err := os.Open(fileName)
	if err != nil {
		return errors.Wrapf(err, "opening token file %s for read", fileName)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(&cm); err != nil {
		return errors.Wrapf(err, "loading token from %s", fileName)
	}

	if cm.AccessToken == "" {
		return errors.Wrapf(ErrNoToken, "loading token from %s", fileName)
	}

	c.accessToken = cm.AccessToken
	c.savedAt = cm.SavedAt
	c.fileName = fileName
	if c.ctx == nil {
		c.ctx = context.Background()
	}

	logging.Logger(c.ctx).Debugf("loaded credentials: %s", c)
	return nil
}

// Load reads credentials from a token file
func Load(fileName string) (Creds, error) {
	c := New("")
	err := c.Load(fileName)
	return c, err
}
