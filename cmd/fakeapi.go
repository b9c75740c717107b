package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jake-scott/lifx-cloud/internal/pkg/fakeapi"
	"github.com/jake-scott/lifx-cloud/internal/pkg/logging"
)

var serveFakeCmd = &cobra.Command{
	Use:   "serve-fake",
	Short: "Run a fake LIFX cloud API with a few demo lights",
	Long: `Run an in-memory fake of the LIFX cloud API, for trying out commands
without real lights.  Point other commands at it with
--base-url http://localhost:<port>/v1 --token <fake token>.`,

	PreRunE: func(cmd *cobra.Command, args []string) error {
		return checkRequiredFlags("fake.token")
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		return doServeFake()
	},
}

func init() {
	serveFakeCmd.Flags().Uint16("port", 8080, "HTTP port number")
	serveFakeCmd.Flags().String("fake-token", "", "access token the fake API accepts")
	serveFakeCmd.Flags().String("tls-cert", "", "TLS certificate file, serve plain HTTP if not set")
	serveFakeCmd.Flags().String("tls-key", "", "TLS key file")
	serveFakeCmd.Flags().Duration("graceful-timeout", time.Second*15, "duration to wait for server to finish, eg. 1m or 10s")
	serveFakeCmd.Flags().Duration("read-timeout", time.Second*15, "duration to wait for request read, eg. 1m or 10s")
	serveFakeCmd.Flags().Duration("write-timeout", time.Second*60, "duration to wait for request write, eg. 1m or 10s")

	errPanic(viper.GetViper().BindPFlag("fake.port", serveFakeCmd.Flags().Lookup("port")))
	errPanic(viper.GetViper().BindPFlag("fake.token", serveFakeCmd.Flags().Lookup("fake-token")))
	errPanic(viper.GetViper().BindPFlag("fake.tls-cert", serveFakeCmd.Flags().Lookup("tls-cert")))
	errPanic(viper.GetViper().BindPFlag("fake.tls-key", serveFakeCmd.Flags().Lookup("tls-key")))
	errPanic(viper.GetViper().BindPFlag("fake.graceful-timeout", serveFakeCmd.Flags().Lookup("graceful-timeout")))
	errPanic(viper.GetViper().BindPFlag("fake.read-timeout", serveFakeCmd.Flags().Lookup("read-timeout")))
	errPanic(viper.GetViper().BindPFlag("fake.write-timeout", serveFakeCmd.Flags().Lookup("write-timeout")))

	rootCmd.AddCommand(serveFakeCmd)
}

func doServeFake() error {
	wait := viper.GetDuration("fake.graceful-timeout")
	port := viper.GetUint("fake.port")
	certFile := viper.GetString("fake.tls-cert")
	keyFile := viper.GetString("fake.tls-key")

	var logBodies bool
	if viper.GetBool("logging.log-requests") {
		if logrus.IsLevelEnabled(logrus.DebugLevel) {
			logBodies = true
		} else {
			logging.Logger(nil).Warn("log-requests ignored when not in debug mode")
		}
	}

	lights := fakeapi.DemoLights()
	fake := fakeapi.New(viper.GetString("fake.token")).
		WithLights(lights...).
		WithScenes(fakeapi.DemoScene("Evening", lights)).
		WithBodyLogging(logBodies)

	s := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		ReadTimeout:  viper.GetDuration("fake.read-timeout"),
		WriteTimeout: viper.GetDuration("fake.write-timeout"),
		IdleTimeout:  time.Second * 60,
		Handler:      fake.Handler(),
	}

	logging.Logger(nil).Infof("Serving fake API on port %d", port)
	go func() {
		var err error
		if certFile != "" && keyFile != "" {
			err = s.ListenAndServeTLS(certFile, keyFile)
		} else {
			err = s.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logging.Logger(nil).WithError(err).Error("running server")
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	// Block until we receive a signal
	<-c

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	logging.Logger(nil).Info("shutting down")
	if err := s.Shutdown(ctx); err != nil {
		logging.Logger(nil).WithError(err).Errorf("shutting down")
	}
	logging.Logger(nil).Info("exiting")
	return nil
}
