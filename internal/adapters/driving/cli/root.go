// Package cli provides the hub command line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/hub/internal/core/domain"
	"github.com/custodia-labs/hub/internal/core/ports/driving"
	"github.com/custodia-labs/hub/internal/logger"
	"github.com/custodia-labs/hub/internal/metrics"
)

// version is set at build time.
var version = "dev"

// Services holds the driving ports the commands call.
type Services struct {
	Reflect    driving.ReflectService
	Query      driving.QueryService
	Invoke     driving.InvokeService
	Data       driving.DataService
	Poll       driving.PollService
	Notify     driving.NotifyService
	Connectors driving.ConnectorService
	Queue      driving.QueueService
	Scheduler  driving.PollScheduler
	Metrics    *metrics.Recorder

	// ListenAddr is the configured HTTP listen address.
	ListenAddr string
	// BaseURL overrides the externally visible URL of the HTTP API.
	BaseURL string

	// Watch reloads configuration on change until the returned stop
	// function is called. May be nil.
	Watch func(ctx context.Context) (func(), error)
}

// Options are the resolved global flags.
type Options struct {
	ConfigDir string
	Verbose   bool
}

// Bootstrap builds the services for a command invocation. The returned
// cleanup function releases stores and is called once the command exits.
type Bootstrap func(ctx context.Context, opts Options) (*Services, func(), error)

var (
	services  *Services
	bootstrap Bootstrap
	cleanup   func()

	configDir string
	verbose   bool
	userEmail string
)

// skipBootstrap marks commands that run without services.
const skipBootstrap = "skip-bootstrap"

var rootCmd = &cobra.Command{
	Use:   "hub",
	Short: "Reflective gateway to connected systems",
	Long: `hub exposes every configured connector as a navigable tree of entity
sets, entities, actions and events.

Clients reflect a path to discover what it is, query entity sets, invoke
actions and subscribe to events through polling or inbound notifications.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupServices,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "configuration directory (default ~/.hub)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&userEmail, "user", "", "act as the user with this email")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap registers the function that builds services before a
// command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	defer func() {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func setupServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if cmd.Annotations[skipBootstrap] == "true" || services != nil {
		return nil
	}
	if bootstrap == nil {
		return errors.New("services not configured")
	}

	svc, done, err := bootstrap(cmd.Context(), Options{ConfigDir: configDir, Verbose: verbose})
	if err != nil {
		return err
	}
	services = svc
	cleanup = done
	return nil
}

// currentUser is the identity given with --user. Without one, the command
// runs anonymously and only sees shared connectors.
func currentUser() domain.User {
	return domain.User{ID: userEmail, Email: userEmail}
}

// svc returns the configured services or an empty set.
func svc() *Services {
	if services == nil {
		return &Services{}
	}
	return services
}
