// companyctl is the terminal admin surface over the Company Plus API: the
// dashboard, commerce and chat views backed by the client package.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Syed-Shayan-ALi33/company-plus/internal/assistant"
	"github.com/Syed-Shayan-ALi33/company-plus/internal/client"
	"github.com/Syed-Shayan-ALi33/company-plus/internal/config"
	"github.com/Syed-Shayan-ALi33/company-plus/internal/store"
)

var (
	cfg      *config.Config
	api      *client.API
	sessions *client.SessionManager
)

var rootCmd = &cobra.Command{
	Use:   "companyctl",
	Short: "Admin CLI for the Company Plus platform",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		api = client.NewAPI(cfg.APIBase)

		tokens, err := client.NewFileTokenStore(cfg.TokenFile)
		if err != nil {
			return err
		}
		sessions = client.NewSessionManager(api, tokens)
		return sessions.Bootstrap(cmd.Context())
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Sign in and store the session token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Print("Password: ")
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return err
		}

		if err := sessions.Login(cmd.Context(), args[0], strings.TrimSpace(password)); err != nil {
			return err
		}
		fmt.Printf("Signed in as %s\n", sessions.Username())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Invalidate the current session",
	Run: func(cmd *cobra.Command, args []string) {
		sessions.Logout(cmd.Context())
		fmt.Println("Signed out")
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !sessions.IsAuthenticated() {
			return fmt.Errorf("not signed in")
		}
		fmt.Println(sessions.Username())
		return nil
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print the dashboard snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		sync := client.NewSynchronizer(api)
		if err := sync.Start(cmd.Context()); err != nil {
			return err
		}
		printSnapshot(sync)
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the dashboard and reprint on every refresh",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		sync := client.NewSynchronizer(api)
		if err := sync.Start(ctx); err != nil {
			return err
		}

		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		printSnapshot(sync)
		for {
			select {
			case <-ticker.C:
				printSnapshot(sync)
			case <-ctx.Done():
				return nil
			}
		}
	},
}

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Manage orders",
}

var orderAddCmd = &cobra.Command{
	Use:   "add <customer> <product> <amount>",
	Short: "Create an order",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var amount float64
		if _, err := fmt.Sscanf(args[2], "%f", &amount); err != nil {
			return fmt.Errorf("invalid amount %q", args[2])
		}

		phone, _ := cmd.Flags().GetString("phone")
		visibility, _ := cmd.Flags().GetString("visibility")

		resp, err := api.CreateOrder(cmd.Context(), client.OrderRequest{
			Customer:   args[0],
			Product:    args[1],
			Amount:     amount,
			Phone:      phone,
			Visibility: visibility,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created %s (%s, %.2f)\n", resp.Order.ID, resp.Order.Status, resp.Order.Amount)
		return nil
	},
}

var orderStatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Update an order's status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := api.UpdateOrderStatus(cmd.Context(), args[0], store.OrderStatus(args[1]))
		if err != nil {
			return err
		}
		fmt.Printf("%s -> %s\n", resp.Order.ID, resp.Order.Status)
		return nil
	},
}

var orderDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := api.DeleteOrder(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the platform assistant",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.AssistantAPIKey == "" {
			return fmt.Errorf("ASSISTANT_API_KEY is not set")
		}

		chat := assistant.NewChat(cfg.AssistantEndpoint, cfg.AssistantAPIKey, cfg.AssistantModel)
		scanner := bufio.NewScanner(os.Stdin)
		fmt.Println("Type a message, or 'exit' to quit.")
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "exit" {
				return nil
			}

			reply, err := chat.Send(cmd.Context(), line)
			if err != nil {
				fmt.Printf("Assistant: %v\n", err)
				continue
			}
			fmt.Printf("Assistant: %s\n", reply)
		}
	},
}

func printSnapshot(sync *client.Synchronizer) {
	snap := sync.Snapshot()
	stats := sync.Stats()

	fmt.Printf("Revenue: %.2f  Active users: %d  Leads: %d  Conversion: %.1f%%\n",
		snap.Metrics.Revenue, snap.Metrics.ActiveUsers, snap.Metrics.Leads, snap.Metrics.ConversionRate)
	fmt.Printf("Orders: %d total, %d pending, %d delivered\n", stats.Total, stats.Pending, stats.Delivered)
	for _, o := range snap.Orders {
		fmt.Printf("  %-10s %-20s %-20s %8.2f  %-10s %s\n", o.ID, o.Customer, o.Product, o.Amount, o.Status, o.Date)
	}
}

func main() {
	orderAddCmd.Flags().String("phone", "", "Customer phone number")
	orderAddCmd.Flags().String("visibility", "private", "Order visibility (private|public)")

	orderCmd.AddCommand(orderAddCmd, orderStatusCmd, orderDeleteCmd)
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, dashboardCmd, watchCmd, orderCmd, chatCmd)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
