// Command helmsman runs behavioural-contract evaluations over a RAG
// answering pipeline, compares prior runs, and serves the evaluator over
// HTTP.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/mohdibrahimai/HELMSMAN/internal/config"
	"github.com/mohdibrahimai/HELMSMAN/internal/contract"
	"github.com/mohdibrahimai/HELMSMAN/internal/detector"
	"github.com/mohdibrahimai/HELMSMAN/internal/diff"
	"github.com/mohdibrahimai/HELMSMAN/internal/evaluate"
	"github.com/mohdibrahimai/HELMSMAN/internal/pack"
	"github.com/mohdibrahimai/HELMSMAN/internal/rag"
	"github.com/mohdibrahimai/HELMSMAN/internal/server"
	"github.com/mohdibrahimai/HELMSMAN/internal/session"
	"github.com/mohdibrahimai/HELMSMAN/internal/sink"
	"github.com/mohdibrahimai/HELMSMAN/internal/truth"
)

var rootCmd = &cobra.Command{
	Use:           "helmsman",
	Short:         "Behavioural-contract evaluation harness for RAG pipelines",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runFlags struct {
	contractsDir  string
	packs         string
	prompts       string
	modelVersion  string
	out           string
	corpus        string
	redisAddr     string
	postgresDSN   string
	answerTimeout time.Duration
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Evaluate a test pack and write run records as JSONL",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		store, err := contract.LoadDir(runFlags.contractsDir)
		if err != nil {
			return err
		}
		if store.Len() == 0 {
			return fmt.Errorf("no contracts found in %s", runFlags.contractsDir)
		}

		items, err := pack.Load(runFlags.packs)
		if err != nil {
			return err
		}
		prompts, err := config.LoadPrompts(runFlags.prompts)
		if err != nil {
			return err
		}

		var retriever rag.Source
		retriever, err = rag.NewRetriever(runFlags.corpus, 3)
		if err != nil {
			return err
		}
		if runFlags.redisAddr != "" {
			client := redis.NewClient(&redis.Options{Addr: runFlags.redisAddr})
			defer client.Close()
			retriever = rag.NewCachedRetriever(retriever, rag.NewRedisCache(client), time.Hour)
			log.Printf("retrieval cache enabled via redis at %s", runFlags.redisAddr)
		}

		out, err := sink.NewJSONLSink(runFlags.out)
		if err != nil {
			return err
		}
		var recordSink sink.Sink = out
		if runFlags.postgresDSN != "" {
			pool, err := pgxpool.New(ctx, runFlags.postgresDSN)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pool.Close()
			pgSink, err := sink.NewPostgresSink(ctx, pool)
			if err != nil {
				return err
			}
			recordSink = sink.NewMultiSink(out, pgSink)
			log.Printf("run records mirrored to postgres")
		}

		sess, err := session.New(session.Config{
			Store:         store,
			Evaluator:     evaluate.New(detector.NewRegistry()),
			Retriever:     retriever,
			Answerer:      rag.NewAnswerer(prompts.SystemPrompt),
			Sink:          recordSink,
			Claims:        truth.NewLens(),
			ModelVersion:  runFlags.modelVersion,
			PromptVersion: prompts.Version,
			AnswerTimeout: runFlags.answerTimeout,
		})
		if err != nil {
			return err
		}

		emitted, err := sess.Run(ctx, items)
		if closeErr := recordSink.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}
		log.Printf("wrote %d run records to %s", emitted, runFlags.out)
		return nil
	},
}

var diffFlags struct {
	gates string
}

var diffCmd = &cobra.Command{
	Use:   "diff <baseline.jsonl> <candidate.jsonl>",
	Short: "Compare per-contract pass rates between two runs",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := diff.CompareRuns(args[0], args[1], diffFlags.gates)
		if err != nil {
			return err
		}

		fmt.Println("Contract pass rates (A vs B):")
		for _, id := range report.ContractIDs() {
			fmt.Printf("  %s: %.2f -> %.2f (delta=%+.2f)\n",
				id, report.RatesA[id], report.RatesB[id], report.Deltas[id])
		}
		if diffFlags.gates == "" {
			return nil
		}
		if !report.GatesOK {
			fmt.Println("\nGate thresholds exceeded:")
			for id, delta := range report.Failed {
				fmt.Printf("  %s: delta %+.2f (threshold %.2f)\n", id, delta, report.Gates[id])
			}
			return fmt.Errorf("gate thresholds exceeded")
		}
		fmt.Println("\nAll gates passed.")
		return nil
	},
}

var serveFlags struct {
	contractsDir string
	addr         string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the contract evaluator over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := contract.LoadDir(serveFlags.contractsDir)
		if err != nil {
			return err
		}
		if store.Len() == 0 {
			return fmt.Errorf("no contracts found in %s", serveFlags.contractsDir)
		}

		srv := &http.Server{
			Addr:         serveFlags.addr,
			Handler:      server.New(store, evaluate.New(detector.NewRegistry())).Router(),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		ctx := cmd.Context()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("server shutdown error: %v", err)
			}
		}()

		log.Printf("serving %d contracts on %s", store.Len(), serveFlags.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runFlags.contractsDir, "contracts_dir", "", "directory containing contract YAML files")
	runCmd.Flags().StringVar(&runFlags.packs, "packs", "", "path to JSONL test pack")
	runCmd.Flags().StringVar(&runFlags.prompts, "prompts", "", "path to prompt config (YAML)")
	runCmd.Flags().StringVar(&runFlags.modelVersion, "model", "local", "model name/version to record in outputs")
	runCmd.Flags().StringVar(&runFlags.out, "out", "", "path to output JSONL file")
	runCmd.Flags().StringVar(&runFlags.corpus, "corpus", "data/corpus.jsonl", "path to retrieval corpus JSONL")
	runCmd.Flags().StringVar(&runFlags.redisAddr, "redis_addr", "", "optional redis address for the retrieval cache")
	runCmd.Flags().StringVar(&runFlags.postgresDSN, "postgres_dsn", "", "optional postgres DSN to mirror run records into")
	runCmd.Flags().DurationVar(&runFlags.answerTimeout, "answer_timeout", session.DefaultAnswerTimeout, "per-record answering timeout")
	for _, flag := range []string{"contracts_dir", "packs", "prompts", "out"} {
		_ = runCmd.MarkFlagRequired(flag)
	}

	diffCmd.Flags().StringVar(&diffFlags.gates, "gates", "", "optional YAML file of gate thresholds")

	serveCmd.Flags().StringVar(&serveFlags.contractsDir, "contracts_dir", "", "directory containing contract YAML files")
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", ":8080", "listen address")
	_ = serveCmd.MarkFlagRequired("contracts_dir")

	rootCmd.AddCommand(runCmd, diffCmd, serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
