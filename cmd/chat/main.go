package main

import (
	"chat-sync/domain"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "chat",
	Short:        "Multi-channel group chat client",
	SilenceUsage: true,
}

// channels command
var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "Manage channels",
}

var channelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List channels",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		channels := a.client.Channels()
		if len(channels) == 0 {
			fmt.Println("No channels.")
			return nil
		}
		active, _ := a.client.ActiveChannel()

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"", "Name", "Messages", "Created", "ID"})
		table.SetAutoWrapText(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetCenterSeparator("")
		table.SetColumnSeparator("")
		table.SetRowSeparator("")
		table.SetHeaderLine(false)
		table.SetBorder(false)
		table.SetTablePadding("\t")
		for _, ch := range channels {
			marker := ""
			if ch.ID == active.ID {
				marker = "*"
			}
			table.Append([]string{
				marker,
				ch.Name,
				fmt.Sprint(a.client.MessageCount(ch.ID)),
				ch.CreatedAt.Local().Format(time.DateTime),
				ch.ID.String(),
			})
		}
		table.Render()
		return nil
	},
}

var channelsCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		ch, err := a.client.CreateChannel(cmd.Context(), args[0])
		if err != nil {
			return describe(err)
		}
		fmt.Printf("Channel %s created (%s)\n", ch.Name, ch.ID)
		return nil
	},
}

var channelsRenameCmd = &cobra.Command{
	Use:   "rename NAME NEW_NAME",
	Short: "Rename a channel",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		ch, err := a.channel(args[0])
		if err != nil {
			return err
		}
		renamed, err := a.client.RenameChannel(cmd.Context(), ch.ID, args[1])
		if err != nil {
			return describe(err)
		}
		fmt.Printf("Channel %s renamed to %s\n", ch.Name, renamed.Name)
		return nil
	},
}

var channelsDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a channel and its messages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		ch, err := a.channel(args[0])
		if err != nil {
			return err
		}
		if err = a.client.DeleteChannel(cmd.Context(), ch.ID); err != nil {
			return describe(err)
		}
		fmt.Printf("Channel %s deleted\n", ch.Name)
		return nil
	},
}

// post command
var postCmd = &cobra.Command{
	Use:   "post MESSAGE...",
	Short: "Post a message",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err = selectChannel(cmd, a); err != nil {
			return err
		}
		if _, err = a.client.PostMessage(cmd.Context(), strings.Join(args, " ")); err != nil {
			return describe(err)
		}
		return nil
	},
}

// watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow a channel live",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		color.Enable = a.config.Colours

		if err = selectChannel(cmd, a); err != nil {
			return err
		}
		active, ok := a.client.ActiveChannel()
		if !ok {
			return fmt.Errorf("no channel to watch")
		}
		fmt.Println(color.New(color.BgBlack, color.FgGreen).Render(fmt.Sprintf("  ====== #%s ======  ", active.Name)))

		done := a.client.Start(ctx)
		printer := newFeedPrinter()
		sub, err := a.client.Watch(ctx, func() { printer.print(a.client.ActiveMessages()) })
		defer sub.Close()
		if err != nil {
			fmt.Fprintln(os.Stderr, color.New(color.FgYellow).Render(fmt.Sprintf("sync failed, waiting for updates: %v", describe(err))))
			printer.print(a.client.ActiveMessages())
		}

		select {
		case <-ctx.Done():
			return <-done
		case err = <-done:
			return describe(err)
		}
	},
}

func selectChannel(cmd *cobra.Command, a *app) error {
	name, _ := cmd.Flags().GetString("channel")
	if name == "" {
		return nil
	}
	ch, err := a.channel(name)
	if err != nil {
		return err
	}
	a.client.SelectChannel(ch.ID)
	return nil
}

// feedPrinter prints each message once, in feed order.
type feedPrinter struct {
	mu      sync.Mutex
	printed map[domain.MessageID]struct{}
}

func newFeedPrinter() *feedPrinter {
	return &feedPrinter{printed: make(map[domain.MessageID]struct{})}
}

func (p *feedPrinter) print(messages []domain.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range messages {
		if _, ok := p.printed[m.ID]; ok {
			continue
		}
		p.printed[m.ID] = struct{}{}
		fmt.Printf("%s %s %s\n",
			color.New(color.FgDarkGray).Render(m.CreatedAt.Local().Format(time.TimeOnly)),
			color.New(color.FgCyan, color.OpBold).Render(m.Author),
			m.Body)
	}
}

func init() {
	channelsCmd.AddCommand(channelsListCmd)
	channelsCmd.AddCommand(channelsCreateCmd)
	channelsCmd.AddCommand(channelsRenameCmd)
	channelsCmd.AddCommand(channelsDeleteCmd)
	rootCmd.AddCommand(channelsCmd)

	postCmd.Flags().StringP("channel", "c", "", "channel to post to (default: first channel)")
	rootCmd.AddCommand(postCmd)

	watchCmd.Flags().StringP("channel", "c", "", "channel to follow (default: first channel)")
	rootCmd.AddCommand(watchCmd)
}
