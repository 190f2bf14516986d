package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/Garsondee/Skin-Clinic/internal/clinic"
	"github.com/Garsondee/Skin-Clinic/internal/config"
)

type runStats struct {
	runIndex int
	seed     int64

	customers      int
	conditions     int
	reducedDiff    int // treatments placed fewer conditions than requested
	byDifficulty   map[int]int
	byCondition    map[string]int
	scoreSum       float64
	coverageSum    float64
	wrongSum       float64
	dirtySum       float64
	earnings       int
	finalMoney     int
	zeroPayRounds  int
	diagnostics    int
	diagByCategory map[string]int
}

func main() {
	var runs int
	var customers int
	var seedBase int64
	var seedStep int64
	var difficulty int
	var painter clinic.Painter
	var copyReport bool
	var showDiag bool

	flag.IntVar(&runs, "runs", 5, "number of headless sessions")
	flag.IntVar(&customers, "customers", 10, "customers served per session")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.IntVar(&difficulty, "difficulty", 0, "fixed requested difficulty 1-3 (0 = random per customer)")
	flag.Float64Var(&painter.Coverage, "coverage", 0.85, "fraction of each zone the scripted player paints")
	flag.Float64Var(&painter.Accuracy, "accuracy", 0.9, "chance the scripted player picks the right cream per zone")
	flag.Float64Var(&painter.Spill, "spill", 0.05, "stray paint outside zones, relative to paint inside")
	flag.Float64Var(&painter.Speed, "speed", 0.6, "fraction of the time limit the scripted player uses")
	flag.BoolVar(&copyReport, "copy", false, "copy the report to the clipboard")
	flag.BoolVar(&showDiag, "diag", false, "print every diagnostic")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if customers <= 0 {
		fmt.Println("error: -customers must be > 0")
		return
	}
	if difficulty < 0 || difficulty > clinic.MaxDifficulty {
		fmt.Printf("error: -difficulty must be 0..%d\n", clinic.MaxDifficulty)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
	log := config.NewLogger(cfg.Env)
	masks, err := cfg.Masks(clinic.WithLogger(log))
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Headless Clinic Report ===\n")
	fmt.Fprintf(&sb, "runs=%d customers=%d seed_base=%d seed_step=%d difficulty=%d\n",
		runs, customers, seedBase, seedStep, difficulty)
	fmt.Fprintf(&sb, "painter: coverage=%.2f accuracy=%.2f spill=%.2f speed=%.2f penalize_outside=%t\n\n",
		painter.Coverage, painter.Accuracy, painter.Spill, painter.Speed, cfg.Scoring.PenalizeOutside)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		tc := clinic.NewTestClinic(
			clinic.WithSeed(seed),
			clinic.WithCanvasSize(cfg.CanvasSize),
			clinic.WithMasks(masks),
			clinic.WithPainter(painter),
			clinic.WithDifficulty(difficulty),
			clinic.WithScoring(cfg.Scoring),
			clinic.WithTreatmentConfig(cfg.Treatment),
			clinic.WithStartingMoney(cfg.StartingMoney),
		)
		rounds := tc.ServeCustomers(customers)
		rs := summarizeRun(i+1, seed, rounds, tc.Session, tc.DiagLog)
		all = append(all, rs)
		printRun(&sb, rs)
		if showDiag && len(tc.DiagLog.Entries()) > 0 {
			sb.WriteString(tc.DiagLog.Format())
			sb.WriteByte('\n')
		}
	}
	printAggregate(&sb, all)

	report := sb.String()
	fmt.Print(report)
	if copyReport {
		if err := clipboard.WriteAll(report); err != nil {
			fmt.Printf("warning: clipboard: %v\n", err)
		}
	}
}

func summarizeRun(runIndex int, seed int64, rounds []*clinic.Round, session *clinic.Session, diag *clinic.DiagLog) runStats {
	rs := runStats{
		runIndex:       runIndex,
		seed:           seed,
		byDifficulty:   map[int]int{},
		byCondition:    map[string]int{},
		diagByCategory: map[string]int{},
	}
	for _, r := range rounds {
		c := r.Customer()
		if c == nil || c.Treatment == nil {
			continue
		}
		t := c.Treatment
		rs.customers++
		rs.conditions += t.ConditionCount()
		rs.byDifficulty[t.EffectiveDifficulty()]++
		if t.ConditionCount() < t.RequestedDifficulty() {
			rs.reducedDiff++
		}
		for _, sc := range t.Conditions() {
			rs.byCondition[sc.Type().String()]++
		}

		res := r.Result()
		rs.scoreSum += res.FinalScore
		rs.coverageSum += res.CorrectCoverage
		rs.wrongSum += res.WrongColorRate
		rs.dirtySum += res.DirtyRate
		rs.earnings += res.FinalPayment
		if res.FinalPayment == 0 {
			rs.zeroPayRounds++
		}
	}
	if session != nil {
		rs.finalMoney = session.Money()
	}
	for _, e := range diag.Entries() {
		rs.diagnostics++
		rs.diagByCategory[e.Category]++
	}
	return rs
}

func printRun(sb *strings.Builder, rs runStats) {
	fmt.Fprintf(sb, "--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Fprintf(sb, "treatments: customers=%d conditions=%d reduced_difficulty=%d difficulty_mix=%s\n",
		rs.customers, rs.conditions, rs.reducedDiff, joinCounts(intKeys(rs.byDifficulty)))
	fmt.Fprintf(sb, "condition_mix: %s\n", joinCounts(rs.byCondition))
	fmt.Fprintf(sb, "avg_rates: coverage=%.3f wrong_color=%.3f dirty=%.3f\n",
		avgf(rs.coverageSum, rs.customers), avgf(rs.wrongSum, rs.customers), avgf(rs.dirtySum, rs.customers))
	fmt.Fprintf(sb, "score: avg=%.3f grade=%s zero_pay_rounds=%d\n",
		avgf(rs.scoreSum, rs.customers), scoreGrade(avgf(rs.scoreSum, rs.customers)), rs.zeroPayRounds)
	fmt.Fprintf(sb, "money: earnings=%d final_balance=%d\n", rs.earnings, rs.finalMoney)
	fmt.Fprintf(sb, "diagnostics: total=%d %s\n\n", rs.diagnostics, joinCounts(rs.diagByCategory))
}

func printAggregate(sb *strings.Builder, all []runStats) {
	totalCustomers := 0
	totalEarnings := 0
	totalZero := 0
	scoreSum := 0.0
	perRun := make([]float64, 0, len(all))
	for _, rs := range all {
		totalCustomers += rs.customers
		totalEarnings += rs.earnings
		totalZero += rs.zeroPayRounds
		scoreSum += rs.scoreSum
		perRun = append(perRun, avgf(rs.scoreSum, rs.customers))
	}
	sort.Float64s(perRun)

	fmt.Fprintln(sb, "=== Aggregate ===")
	fmt.Fprintf(sb, "runs=%d customers=%d\n", len(all), totalCustomers)
	fmt.Fprintf(sb, "avg_score=%.3f grade=%s\n", avgf(scoreSum, totalCustomers), scoreGrade(avgf(scoreSum, totalCustomers)))
	if len(perRun) > 0 {
		fmt.Fprintf(sb, "run_score_range=%.3f..%.3f\n", perRun[0], perRun[len(perRun)-1])
	}
	fmt.Fprintf(sb, "avg_earnings_per_run=%.1f avg_payment_per_customer=%.1f zero_pay_rounds=%d\n",
		avg(totalEarnings, len(all)), avg(totalEarnings, totalCustomers), totalZero)
}

// scoreGrade buckets an average score into a letter.
func scoreGrade(score float64) string {
	switch {
	case score >= 0.9:
		return "A"
	case score >= 0.75:
		return "B"
	case score >= 0.6:
		return "C"
	case score >= 0.4:
		return "D"
	default:
		return "F"
	}
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgf(sum float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return sum / float64(n)
}

func intKeys(m map[int]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[fmt.Sprintf("d%d", k)] = v
	}
	return out
}

func joinCounts(m map[string]int) string {
	if len(m) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, m[k]))
	}
	return strings.Join(parts, " ")
}
