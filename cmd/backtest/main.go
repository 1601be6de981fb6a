// cmd/backtest runs a strategy backtest from the command line against candles
// stored in SQLite (or synthetic demo candles) and prints a summary.
//
// Usage:
//
//	go run ./cmd/backtest --symbol=RELIANCE --buy="RSI:14:IS_BELOW:30" --sell="RSI:14:IS_ABOVE:70"
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"backtest-systemv1/internal/backtest"
	"backtest-systemv1/internal/model"
	"backtest-systemv1/internal/provider"
	"backtest-systemv1/internal/rule"
	sqlitestore "backtest-systemv1/internal/store/sqlite"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	symbol := flag.String("symbol", "RELIANCE", "Symbol to backtest")
	buyStr := flag.String("buy", "RSI:14:IS_BELOW:30", "Buy rules (KIND:PERIOD:CONDITION:THRESHOLD,...)")
	sellStr := flag.String("sell", "", "Sell rules (empty = exit on stop/target/end only)")
	dbPath := flag.String("db", "data/backtest.db", "Path to SQLite database")
	demo := flag.Bool("demo", false, "Use synthetic demo candles instead of SQLite")
	capital := flag.Float64("capital", 100000, "Initial capital")
	stopLoss := flag.Float64("stop", 2, "Stop-loss percent")
	target := flag.Float64("target", 4, "Target percent")
	save := flag.Bool("save", false, "Journal the run to SQLite")
	flag.Parse()

	buyRules, err := rule.Parse(*buyStr)
	if err != nil {
		log.Fatalf("[backtest] bad buy rules: %v", err)
	}
	sellRules, err := rule.Parse(*sellStr)
	if err != nil {
		log.Fatalf("[backtest] bad sell rules: %v", err)
	}

	candles, err := loadCandles(*symbol, *dbPath, *demo)
	if err != nil {
		log.Fatalf("[backtest] load candles: %v", err)
	}
	if len(candles) == 0 {
		log.Fatalf("[backtest] no candles for %s", *symbol)
	}

	cfg := backtest.Config{
		InitialCapital: *capital,
		StopLossPct:    *stopLoss,
		TargetPct:      *target,
	}
	result, err := backtest.Run(candles, buyRules, sellRules, cfg)
	if err != nil {
		log.Fatalf("[backtest] run failed: %v", err)
	}

	if *save {
		writer, err := sqlitestore.New(*dbPath)
		if err != nil {
			log.Fatalf("[backtest] sqlite open: %v", err)
		}
		defer writer.Close()
		if err := writer.SaveRun(*symbol, cfg, result); err != nil {
			log.Printf("[backtest] journal write failed: %v", err)
		}
	}

	printSummary(*symbol, len(candles), result)
}

func loadCandles(symbol, dbPath string, demo bool) (model.Series, error) {
	if demo {
		return provider.NewDemoProvider().Candles(context.Background(), symbol)
	}
	reader, err := sqlitestore.NewReader(dbPath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return reader.ReadCandles(symbol, 0)
}

func printSummary(symbol string, bars int, r *model.BacktestResult) {
	s := r.Stats
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════╗")
	fmt.Println("║         BACKTEST COMPLETE            ║")
	fmt.Println("╠══════════════════════════════════════╣")
	fmt.Printf("║  Symbol:          %-18s ║\n", symbol)
	fmt.Printf("║  Bars:            %-18d ║\n", bars)
	fmt.Printf("║  Trades:          %-18d ║\n", s.TotalTrades)
	fmt.Printf("║  Win rate:        %-17.2f%% ║\n", s.WinRatePct)
	fmt.Printf("║  Total P&L:       %-18.0f ║\n", s.TotalPnL)
	fmt.Printf("║  Net return:      %-17.2f%% ║\n", s.NetReturnPct)
	fmt.Printf("║  Max drawdown:    %-17.2f%% ║\n", s.MaxDrawdownPct)
	fmt.Printf("║  Sharpe:          %-18.2f ║\n", s.SharpeRatio)
	fmt.Printf("║  Profit factor:   %-18.2f ║\n", s.ProfitFactor)
	fmt.Println("╚══════════════════════════════════════╝")

	for i, t := range r.Trades {
		if i >= 10 {
			fmt.Printf("  ... %d more trades\n", len(r.Trades)-10)
			break
		}
		fmt.Printf("  #%d %s → %s  qty=%d  pnl=%.2f (%.2f%%)  %s\n",
			i+1, t.EntryTS.Format("2006-01-02 15:04"), t.ExitTS.Format("2006-01-02 15:04"),
			t.Qty, t.PnL, t.PnLPct, t.ExitReason)
	}
}
