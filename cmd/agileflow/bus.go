package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/agileflowhq/agileflow/internal/bus"
)

var busCmd = &cobra.Command{
	Use:   "bus",
	Short: "Agent message bus operations",
}

var sendMsg bus.Message

var busSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Append a message to the bus log",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bus.Append(rootDir, sendMsg); err != nil {
			return err
		}
		fmt.Printf("%s message sent\n", color.GreenString("✓"))
		return nil
	},
}

var (
	tailCount  int
	tailFollow bool
)

var busTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Show recent bus messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		msgs, err := bus.TailMessages(rootDir, tailCount)
		if err != nil {
			return err
		}
		// TailMessages is most-recent-first; display oldest first.
		for i := len(msgs) - 1; i >= 0; i-- {
			printMessage(msgs[i])
		}

		if !tailFollow {
			return nil
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		watcher := bus.NewWatcher(rootDir, 2)
		if err := watcher.Follow(ctx, printMessage); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func printMessage(msg bus.Message) {
	line := fmt.Sprintf("%s  %s → %s  %s", msg.At, msg.From, msg.To, msg.Type)
	if msg.Status != "" {
		line += " " + msg.Status
	}
	if msg.TaskID != "" {
		line += "  [" + msg.TaskID + "]"
	}
	fmt.Println(line)
}

func init() {
	busSendCmd.Flags().StringVar(&sendMsg.From, "from", "", "sending agent")
	busSendCmd.Flags().StringVar(&sendMsg.To, "to", "", "receiving agent")
	busSendCmd.Flags().StringVar(&sendMsg.Type, "type", "", "message type")
	busSendCmd.Flags().StringVar(&sendMsg.Status, "status", "", "message status")
	busSendCmd.Flags().StringVar(&sendMsg.TaskID, "task", "", "related task id")
	_ = busSendCmd.MarkFlagRequired("from")
	_ = busSendCmd.MarkFlagRequired("type")

	busTailCmd.Flags().IntVarP(&tailCount, "lines", "n", 20, "number of messages to show")
	busTailCmd.Flags().BoolVarP(&tailFollow, "follow", "f", false, "keep following new messages")

	busCmd.AddCommand(busSendCmd)
	busCmd.AddCommand(busTailCmd)
}
