package commands

import (
	"github.com/spf13/cobra"

	"github.com/apexlabs/apexengineer/pkg/audio/portaudio"
)

// devicesCmd represents the devices command
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List audio devices",
	Long:  `List the audio devices PortAudio sees, marking the defaults the run command will use.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return portaudio.PrintDevices()
	},
}
