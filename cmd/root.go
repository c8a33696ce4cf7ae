package cmd

import (
	"github.com/jsphweid/tieline/config"
	"github.com/jsphweid/tieline/session"
	"github.com/jsphweid/tieline/store"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfg  config.Config
	sess *session.Session
)

var rootCmd = &cobra.Command{
	Use:   "tieline",
	Short: "Stores monophonic lines and resolves their ties",
	Long: `tieline imports MusicXML parts and MIDI performances into named lines,
resolves tie chains into exact tick durations and plays or exports them.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String("store", "", "store backend: memory, file or dynamo (env STORE_BACKEND)")
	f.String("store-path", "", "gob file of the file store (env STORE_PATH)")
	f.Uint64("ticks-per-beat", 0, "ticks per quarter note (env TICKS_PER_BEAT)")
	f.String("log-level", "", "logrus level (env LOG_LEVEL)")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.FromEnv()
	if err != nil {
		return err
	}
	f := cmd.Flags()
	if f.Changed("store") {
		c.StoreBackend, _ = f.GetString("store")
	}
	if f.Changed("store-path") {
		c.StorePath, _ = f.GetString("store-path")
	}
	if f.Changed("ticks-per-beat") {
		c.TicksPerBeat, _ = f.GetUint64("ticks-per-beat")
	}
	if f.Changed("log-level") {
		c.LogLevel, _ = f.GetString("log-level")
	}
	if err := c.Validate(); err != nil {
		return err
	}

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return errors.Wrap(err, "log level")
	}
	logrus.SetLevel(level)

	if cmd.Annotations["store"] == "none" {
		cfg = c
		return nil
	}
	s, err := OpenStore(c)
	if err != nil {
		return err
	}
	cfg = c
	UseSession(session.New(s, c.TicksPerBeat))
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	if sess == nil {
		return nil
	}
	return sess.Store().Close()
}

// UseSession sets the session commands and HTTP handlers work against.
func UseSession(s *session.Session) {
	sess = s
}

func OpenStore(c config.Config) (store.Store, error) {
	logrus.WithField("backend", c.StoreBackend).Debug("opening store")
	switch c.StoreBackend {
	case config.BackendMemory:
		return store.NewMemoryStore(), nil
	case config.BackendFile:
		fs, err := store.OpenFileStore(c.StorePath, config.FlushDelay)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case config.BackendDynamo:
		ds, err := store.NewDynamoStore(c.DynamoEndpoint, c.DynamoRegion, c.DynamoTable)
		if err != nil {
			return nil, err
		}
		return ds, nil
	}
	return nil, errors.Errorf("unknown store backend %q", c.StoreBackend)
}
