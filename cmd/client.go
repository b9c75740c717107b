package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/google/uuid"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/jake-scott/lifx-cloud/internal/pkg/creds"
	"github.com/jake-scott/lifx-cloud/internal/pkg/logging"
	"github.com/jake-scott/lifx-cloud/pkg/lifx"
)

func init() {
	viper.SetDefault("lifx.base-url", lifx.DefaultBaseURL)
	viper.SetDefault("lifx.timeout", lifx.DefaultTimeout)
	viper.SetDefault("lifx.attempts", lifx.DefaultAttempts)
	viper.SetDefault("lifx.rate-limit-fallback", lifx.DefaultRateLimitFallback)
	viper.SetDefault("lifx.max-concurrent", lifx.DefaultMaxConcurrent)
}

func init() {
	rootCmd.PersistentFlags().String("token", "", "LIFX personal access token")
	rootCmd.PersistentFlags().String("token-file", "", "file holding the access token, see 'token save'")
	rootCmd.PersistentFlags().String("base-url", lifx.DefaultBaseURL, "API base URL")
	rootCmd.PersistentFlags().Duration("timeout", lifx.DefaultTimeout, "HTTP timeout for each attempt, eg. 10s")
	rootCmd.PersistentFlags().Duration("rate-limit-fallback", lifx.DefaultRateLimitFallback, "wait after a rate limit response with no reset time")
	rootCmd.PersistentFlags().Uint8P("attempts", "a", lifx.DefaultAttempts, "maximum attempts for each request")
	rootCmd.PersistentFlags().Int("max-concurrent", lifx.DefaultMaxConcurrent, "requests in flight at once when targeting several selectors")
	rootCmd.PersistentFlags().Bool("log-requests", false, "log request and response bodies (only in debug mode)")

	errPanic(viper.GetViper().BindPFlag("lifx.token", rootCmd.PersistentFlags().Lookup("token")))
	errPanic(viper.GetViper().BindPFlag("lifx.token-file", rootCmd.PersistentFlags().Lookup("token-file")))
	errPanic(viper.GetViper().BindPFlag("lifx.base-url", rootCmd.PersistentFlags().Lookup("base-url")))
	errPanic(viper.GetViper().BindPFlag("lifx.timeout", rootCmd.PersistentFlags().Lookup("timeout")))
	errPanic(viper.GetViper().BindPFlag("lifx.rate-limit-fallback", rootCmd.PersistentFlags().Lookup("rate-limit-fallback")))
	errPanic(viper.GetViper().BindPFlag("lifx.attempts", rootCmd.PersistentFlags().Lookup("attempts")))
	errPanic(viper.GetViper().BindPFlag("lifx.max-concurrent", rootCmd.PersistentFlags().Lookup("max-concurrent")))
	errPanic(viper.GetViper().BindPFlag("logging.log-requests", rootCmd.PersistentFlags().Lookup("log-requests")))
}

func loadCreds() (creds.Creds, error) {
	if token := viper.GetString("lifx.token"); token != "" {
		return creds.New(token), nil
	}

	if file := viper.GetString("lifx.token-file"); file != "" {
		path, err := homedir.Expand(file)
		if err != nil {
			return creds.Creds{}, errors.Wrap(err, "expanding token file name")
		}
		return creds.Load(path)
	}

	return creds.Creds{}, errors.Wrap(creds.ErrNoToken, "set lifx.token or lifx.token-file")
}

func newAPIClient() (*lifx.Client, error) {
	c, err := loadCreds()
	if err != nil {
		return nil, err
	}

	client := lifx.NewClient("").
		WithTokenSource(c.TokenSource()).
		WithBaseURL(strings.TrimSuffix(viper.GetString("lifx.base-url"), "/")).
		WithRateLimitFallback(viper.GetDuration("lifx.rate-limit-fallback"))

	if viper.GetBool("logging.log-requests") {
		if logrus.IsLevelEnabled(logrus.DebugLevel) {
			client = client.WithRequestLogging()
		} else {
			logging.Logger(nil).Warn("log-requests ignored when not in debug mode")
		}
	}

	return client.WithTimeout(viper.GetDuration("lifx.timeout")), nil
}

func attempts() uint8 {
	n := viper.GetUint("lifx.attempts")
	if n > 255 {
		n = 255
	}
	return uint8(n)
}

// commandContext tags everything one command does with a transaction ID and
// cancels on interrupt
func commandContext() (context.Context, context.CancelFunc) {
	ctx := logging.WithTxnID(context.Background(), uuid.New().String())
	return signalContext(ctx)
}

// parseTarget builds a selector from the command line: the selector text,
// an optional zone spec (eg. "0-3,7") and whether to pick one light at random
func parseTarget(text, zones string, random bool) (lifx.Select, error) {
	sel, err := lifx.ParseSelector(text)
	if err != nil {
		return nil, err
	}

	var pure lifx.PureSelect = sel
	if zones != "" {
		z, err := parseZones(zones)
		if err != nil {
			return nil, err
		}
		pure = sel.Zoned(z)
	}

	if random {
		return pure.Random(), nil
	}
	return pure, nil
}

func parseZones(spec string) (lifx.Zones, error) {
	zones := lifx.Zones{}

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if i := strings.IndexByte(part, '-'); i >= 0 {
			first, err := parseZone(part[:i])
			if err != nil {
				return nil, err
			}
			last, err := parseZone(part[i+1:])
			if err != nil {
				return nil, err
			}
			zones = append(zones, lifx.ZoneRangeInclusive(first, last)...)
			continue
		}

		z, err := parseZone(part)
		if err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}

	return zones, nil
}

func parseZone(s string) (uint8, error) {
	z, err := strconv.ParseUint(strings.TrimSpace(s), 10, 8)
	if err != nil {
		return 0, errors.Wrapf(err, "bad zone %q", s)
	}
	return uint8(z), nil
}

// sendAll sends one request per target and prints what happened to each
func sendAll(ctx context.Context, reqs []lifx.Sender) error {
	outcomes := lifx.SendAll(ctx, viper.GetInt("lifx.max-concurrent"), reqs...)

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			logging.Logger(ctx).WithError(o.Err).Errorf("%s %s", o.Request.Method(), o.Request.Path())
			continue
		}
		printResults(o.Response)
	}

	if failed > 0 {
		return errors.Errorf("%d of %d requests failed", failed, len(outcomes))
	}
	return nil
}

func printResults(resp *lifx.Response) {
	results := resp.Results()
	if len(results) == 0 {
		fmt.Printf("accepted (HTTP %d)\n", resp.StatusCode)
		return
	}

	for _, r := range results {
		fmt.Printf("%-14s %-20s %s\n", r.ID, r.Label, r.Status)
	}
}

// signalContext is cancelled on interrupt so rate limit waits can be
// abandoned
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}
