package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/quietlotus/hadane/internal/client"
	"github.com/quietlotus/hadane/internal/config"
	"github.com/quietlotus/hadane/internal/dateutil"
	"github.com/quietlotus/hadane/internal/services"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to the config file")
	serverURL := pflag.String("server-url", "", "record service base URL (overrides config)")
	token := pflag.String("token", "", "bearer token (overrides config)")
	monthFlag := pflag.StringP("month", "m", "", "visible month as YYYY-MM (default: current month)")
	selectedFlag := pflag.StringP("selected", "s", "", "selected day as YYYY-MM-DD")
	sortFlag := pflag.String("sort", "none", "metric filter: none, sleep, stress or skincare")
	directionFlag := pflag.String("direction", "good", "filter direction: good or bad")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}
	if *token != "" {
		cfg.Token = *token
	}

	location, err := cfg.Location()
	if err != nil {
		log.Fatalf("%v", err)
	}

	zapLog, err := buildLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer zapLog.Sync()

	api := client.New(cfg.ServerURL, cfg.Token, client.WithLocation(location))
	cycles := client.NewCycleLogStore(api, zapLog)
	records := client.NewDailyRecordIndex(api, zapLog)
	session := client.NewCalendarSession(cycles, records, zapLog)
	defer session.Close()

	if *monthFlag != "" {
		visible, err := time.ParseInLocation("2006-01", *monthFlag, location)
		if err != nil {
			log.Fatalf("invalid --month %q, want YYYY-MM", *monthFlag)
		}
		session.SetMonth(visible.Year(), visible.Month())
	}
	if *selectedFlag != "" {
		selected, err := dateutil.ParseDay(*selectedFlag, location)
		if err != nil {
			log.Fatalf("invalid --selected %q, want YYYY-MM-DD", *selectedFlag)
		}
		session.SetSelected(selected)
	}
	if state, err := parseSort(*sortFlag, *directionFlag); err != nil {
		log.Fatalf("%v", err)
	} else {
		session.SetSort(state)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := session.LoadVisibleMonth(ctx); err != nil {
		log.Fatalf("load failed: %v", err)
	}

	render(os.Stdout, session)
}

func parseSort(category, direction string) (services.SortState, error) {
	if category == "" || category == services.SortCategoryNone {
		return services.SortNone(), nil
	}
	state, err := services.SortBy(category, direction)
	if err != nil {
		return services.SortState{}, fmt.Errorf("invalid --sort/--direction: %w", err)
	}
	return state, nil
}

func buildLogger(level string) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	parsed, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zapConfig.Level = parsed
	return zapConfig.Build()
}

// render prints the 6x7 grid. Day cells carry single-character marks:
// * menstruation, z/!/+ the sleep, stress and skincare metrics that
// survive the active filter, and brackets around today.
func render(out *os.File, session *client.CalendarSession) {
	year, month := session.Month()
	grid := session.Grid()

	fmt.Fprintf(out, "%s %d\n", month, year)
	fmt.Fprintln(out, "  Sun    Mon    Tue    Wed    Thu    Fri    Sat")

	for row := 0; row < 6; row++ {
		cells := make([]string, 0, 7)
		for col := 0; col < 7; col++ {
			day := grid[row*7+col]
			cells = append(cells, formatCell(session, day))
		}
		fmt.Fprintln(out, strings.Join(cells, ""))
	}
}

func formatCell(session *client.CalendarSession, day services.CalendarDay) string {
	if !day.InMonth {
		return fmt.Sprintf("%7s", "·")
	}

	label := fmt.Sprintf("%2d", day.Day)
	if day.IsToday {
		label = "[" + strings.TrimSpace(label) + "]"
	}

	var marks strings.Builder
	if day.HasMenstruation {
		marks.WriteByte('*')
	}
	visible := session.DayVisibility(day)
	if visible.Sleep {
		marks.WriteByte('z')
	}
	if visible.Stress {
		marks.WriteByte('!')
	}
	if visible.Skincare {
		marks.WriteByte('+')
	}

	return fmt.Sprintf("%7s", label+marks.String())
}
