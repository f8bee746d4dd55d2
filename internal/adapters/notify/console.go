package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alejandrodnm/offtake/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Notifier y las salidas tabulares de la CLI.
type Console struct {
	out     io.Writer
	compact bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(compact bool) *Console {
	return &Console{out: os.Stdout, compact: compact}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, compact bool) *Console {
	return &Console{out: w, compact: compact}
}

// NotifySweep imprime el barrido en el modo configurado.
func (c *Console) NotifySweep(_ context.Context, sweep domain.Sweep) error {
	if len(sweep.Series) == 0 {
		fmt.Fprintf(c.out, "[%s] empty sweep\n", time.Now().Format("15:04:05"))
		return nil
	}
	if c.compact {
		c.printCompact(sweep)
		return nil
	}
	c.PrintSweep(sweep)
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(sweep domain.Sweep) {
	sum := sweep.Summary()
	final, _ := sweep.Series.Final()

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] sweep %s %d steps → %s %.1f%% (n=%d)",
		time.Now().Format("15:04:05"), shortID(sweep.ID), sum.Steps,
		sum.Dominant, 100*sum.DominantShare, sum.FinalSampleSize)
	for _, name := range final.Order {
		fmt.Fprintf(&sb, " | %s:%d", name, final.Counts[name])
	}
	fmt.Fprintln(c.out, sb.String())
}

// PrintRun imprime un único run: conteo, cuota y valor medio por estrategia.
func (c *Console) PrintRun(run domain.SimulationRun) {
	dominant, _ := run.Dominant()
	fmt.Fprintf(c.out, "\n=== SIMULATION (n=%d) ===\n", run.SampleSize)

	table := tablewriter.NewWriter(c.out)
	table.Header("Strategy", "Selected", "Share", "Mean value", "")
	for _, name := range run.Order {
		mark := ""
		if name == dominant {
			mark = "*"
		}
		table.Append(
			name,
			fmt.Sprintf("%d", run.Counts[name]),
			fmt.Sprintf("%.1f%%", 100*run.Share(name)),
			fmt.Sprintf("%.2f", run.MeanValues[name]),
			mark,
		)
	}
	table.Render()
	fmt.Fprintf(c.out, "  Dominant: %s\n\n", dominant)
}

// PrintSweep imprime la tendencia: una fila por tamaño de muestra, una
// columna por estrategia con su cuota.
func (c *Console) PrintSweep(sweep domain.Sweep) {
	if len(sweep.Series) == 0 {
		return
	}
	names := sweep.Series[0].Order
	sum := sweep.Summary()

	fmt.Fprintf(c.out, "\n=== CONVERGENCE SWEEP %s (seed %d, %d steps) ===\n",
		shortID(sweep.ID), sweep.Seed, sum.Steps)

	header := []any{"n"}
	for _, name := range names {
		header = append(header, name)
	}
	header = append(header, "Dominant")

	table := tablewriter.NewWriter(c.out)
	table.Header(header...)
	for _, run := range sweep.Series {
		dominant, _ := run.Dominant()
		row := []any{fmt.Sprintf("%d", run.SampleSize)}
		for _, name := range names {
			row = append(row, fmt.Sprintf("%d (%.1f%%)", run.Counts[name], 100*run.Share(name)))
		}
		row = append(row, dominant)
		table.Append(row...)
	}
	table.Render()

	fmt.Fprintf(c.out, "  Final: %s selected in %.1f%% of %d trials\n\n",
		sum.Dominant, 100*sum.DominantShare, sum.FinalSampleSize)
}

// PrintRevenue imprime la proyección de ingresos: valor medio muestreado por
// estrategia y tamaño de muestra.
func (c *Console) PrintRevenue(sweep domain.Sweep) {
	if len(sweep.Series) == 0 {
		return
	}
	names := sweep.Series[0].Order

	fmt.Fprintln(c.out, "\n=== REVENUE PROJECTION (mean sampled value) ===")
	header := []any{"n"}
	for _, name := range names {
		header = append(header, name)
	}

	table := tablewriter.NewWriter(c.out)
	table.Header(header...)
	for _, run := range sweep.Series {
		row := []any{fmt.Sprintf("%d", run.SampleSize)}
		for _, name := range names {
			row = append(row, fmt.Sprintf("%.2f", run.MeanValues[name]))
		}
		table.Append(row...)
	}
	table.Render()

	fmt.Fprintln(c.out, "  Profiles:")
	for _, p := range sweep.Profiles {
		fmt.Fprintf(c.out, "    %-10s mean %.2f  spread %.2f\n", p.Name, p.MeanValue, p.Spread)
	}
	fmt.Fprintln(c.out)
}

// PrintHistory imprime la lista de barridos archivados.
func (c *Console) PrintHistory(sweeps []domain.SweepSummary) {
	if len(sweeps) == 0 {
		fmt.Fprintln(c.out, "No archived sweeps")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("ID", "Created", "Seed", "Steps", "Final n", "Dominant", "Share")
	for _, s := range sweeps {
		table.Append(
			s.ID,
			s.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%d", s.Seed),
			fmt.Sprintf("%d", s.Steps),
			fmt.Sprintf("%d", s.FinalSampleSize),
			s.Dominant,
			fmt.Sprintf("%.1f%%", 100*s.DominantShare),
		)
	}
	table.Render()
}

// --- helpers ---

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
