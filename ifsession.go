// This file is part of ifsession.
//
// ifsession is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// ifsession is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with ifsession.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"os"

	"github.com/jetsetilly/ifsession/logger"
	"github.com/jetsetilly/ifsession/prefs"
	"github.com/jetsetilly/ifsession/session"
	"github.com/jetsetilly/ifsession/statsview"
	"github.com/spf13/cobra"
)

// values of persistent flags.
var (
	prefsFile     string
	prefsOverride string
	echoLog       bool
	launchStats   bool
)

var rootCmd = &cobra.Command{
	Use:   "ifsession",
	Short: "Inspect and manage interactive fiction session state",
	Long: `Tools for the session state of Z-machine stories: Quetzal save files,
autosave slots and the save catalogue.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if echoLog {
			logger.SetEcho(os.Stderr, true)
		}
		if prefsOverride != "" {
			prefs.PushCommandLineStack(prefsOverride)
		}
		if launchStats {
			if statsview.Available() {
				statsview.Launch(cmd.OutOrStdout())
			} else {
				fmt.Fprintln(cmd.ErrOrStderr(), "statsview not available in this build")
			}
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&prefsFile, "prefsfile", "", "preferences file (default: ifsession.prefs in the resource path)")
	rootCmd.PersistentFlags().StringVar(&prefsOverride, "prefs", "", "override preferences (eg. \"autosave.slots::5; session.resumeAutosave::true\")")
	rootCmd.PersistentFlags().BoolVar(&echoLog, "log", false, "echo log to stderr")
	rootCmd.PersistentFlags().BoolVar(&launchStats, "statsview", false, "launch statsview server")
}

// loadPreferences from the file specified on the command line or from the
// default location.
func loadPreferences() (*session.Preferences, error) {
	pth := prefsFile
	if pth == "" {
		var err error
		pth, err = session.PreferencesPath()
		if err != nil {
			return nil, err
		}
	}
	return session.NewPreferences(pth)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "* error: %v\n", err)
		os.Exit(10)
	}
}
