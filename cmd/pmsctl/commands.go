package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"hotel_pms/internal/adapters/pmsapi"
	"hotel_pms/internal/bootstrap"
	"hotel_pms/internal/domain"
	"hotel_pms/internal/storage"
)

func replayCmd() *cobra.Command {
	var vendor, file string
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Run one stored webhook body through the pipeline",
		Example: `  pmsctl replay --pms apaleo --file webhook.json
  cat webhook.json | pmsctl replay --pms apaleo --file -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readPayload(cmd, file)
			if err != nil {
				return err
			}
			cfg := loadConfig()
			p, err := bootstrap.Build(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer p.Close()

			ok, err := p.Webhooks.HandleWebhook(cmd.Context(), vendor, raw)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("webhook was not processed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Thanks for the update.")
			return nil
		},
	}
	cmd.Flags().StringVar(&vendor, "pms", "apaleo", "vendor driver name")
	cmd.Flags().StringVarP(&file, "file", "f", "", "webhook body file, - for stdin")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readPayload(cmd *cobra.Command, file string) ([]byte, error) {
	if file == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return b, nil
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", file, err)
	}
	return b, nil
}

func checkinsCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "checkins",
		Short: "List vendor reservation ids arriving on a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := time.Parse("2006-01-02", date)
			if err != nil {
				return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
			}
			cfg := loadConfig()
			client, err := pmsapi.New(cfg.PMSBase, cfg.PMSKey, cfg.PMSRPS)
			if err != nil {
				return err
			}
			ids, err := client.GetReservationsForCheckinDate(cmd.Context(), day)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", time.Now().UTC().Format("2006-01-02"), "check-in date (YYYY-MM-DD)")
	return cmd
}

func migrateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			b, err := storage.Open(cmd.Context(), cfg.StoreDSN)
			if err != nil {
				return err
			}
			defer b.Close()
			if err := b.Migrate(cmd.Context(), dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", b.Kind)
			return nil
		},
	}
	def := os.Getenv("MIGRATIONS_DIR")
	if def == "" {
		def = "migrations"
	}
	cmd.Flags().StringVar(&dir, "dir", def, "directory of .sql migrations (mysql only)")
	return cmd
}

func hotelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hotels",
		Short: "Manage hotels known to the pipeline",
	}
	cmd.AddCommand(hotelsAddCmd())
	return cmd
}

func hotelsAddCmd() *cobra.Command {
	var h domain.Hotel
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a hotel and its vendor hotel id",
		RunE: func(cmd *cobra.Command, args []string) error {
			h.PMS = strings.ToLower(strings.TrimSpace(h.PMS))
			if !knownDriver(h.PMS) {
				return fmt.Errorf("unknown pms %q", h.PMS)
			}
			// webhooks are matched on the canonical UUID form
			if u, err := uuid.Parse(h.PMSHotelID); err == nil {
				h.PMSHotelID = u.String()
			}

			cfg := loadConfig()
			b, err := storage.Open(cmd.Context(), cfg.StoreDSN)
			if err != nil {
				return err
			}
			defer b.Close()

			created, err := b.CreateHotel(cmd.Context(), h)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "hotel %d: %s (%s %s)\n", created.ID, created.Name, created.PMS, created.PMSHotelID)
			return nil
		},
	}
	cmd.Flags().StringVar(&h.Name, "name", "", "hotel name")
	cmd.Flags().StringVar(&h.City, "city", "", "city")
	cmd.Flags().StringVar(&h.PMS, "pms", "apaleo", "vendor driver name")
	cmd.Flags().StringVar(&h.PMSHotelID, "pms-hotel-id", "", "hotel id in the vendor system")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("pms-hotel-id")
	return cmd
}

func knownDriver(name string) bool {
	for _, d := range bootstrap.Drivers() {
		if d.Name == name {
			return true
		}
	}
	return false
}

func statsCmd() *cobra.Command {
	var hotelID int64
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print guest and stay counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			b, err := storage.Open(cmd.Context(), cfg.StoreDSN)
			if err != nil {
				return err
			}
			defer b.Close()

			guests, err := b.CountGuests(cmd.Context())
			if err != nil {
				return err
			}
			stays, err := b.CountStays(cmd.Context(), hotelID)
			if err != nil {
				return err
			}
			scope := "all hotels"
			if hotelID != 0 {
				scope = fmt.Sprintf("hotel %d", hotelID)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "guests: %d\nstays (%s): %d\n", guests, scope, stays)
			return nil
		},
	}
	cmd.Flags().Int64Var(&hotelID, "hotel-id", 0, "count stays of one hotel only")
	return cmd
}

func staysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stays",
		Short: "Inspect reconciled stays",
	}
	cmd.AddCommand(staysShowCmd())
	return cmd
}

func staysShowCmd() *cobra.Command {
	var reservation string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stay stored for a vendor reservation id",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			b, err := storage.Open(cmd.Context(), cfg.StoreDSN)
			if err != nil {
				return err
			}
			defer b.Close()

			st, err := b.GetStayByReservation(cmd.Context(), reservation)
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("no stay for reservation %q", reservation)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stay %d: hotel %d guest %d %s %s..%s (pms guest %s)\n",
				st.ID, st.HotelID, st.GuestID, st.Status,
				st.CheckIn.Format("2006-01-02"), st.CheckOut.Format("2006-01-02"), st.PMSGuestID)
			return nil
		},
	}
	cmd.Flags().StringVar(&reservation, "reservation", "", "vendor reservation id")
	_ = cmd.MarkFlagRequired("reservation")
	return cmd
}
