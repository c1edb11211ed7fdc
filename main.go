package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mudler/xlog"
	"github.com/robfig/cron/v3"

	"github.com/clariohq/clario/core/contextbuilder"
	"github.com/clariohq/clario/core/heat"
	"github.com/clariohq/clario/core/identity"
	"github.com/clariohq/clario/core/pipeline"
	"github.com/clariohq/clario/core/router"
	"github.com/clariohq/clario/db"
	"github.com/clariohq/clario/pkg/billing"
	"github.com/clariohq/clario/pkg/channels"
	"github.com/clariohq/clario/pkg/events"
	"github.com/clariohq/clario/pkg/llm"
	"github.com/clariohq/clario/services/actions"
	"github.com/clariohq/clario/services/forms"
	"github.com/clariohq/clario/services/products"
	"github.com/clariohq/clario/webapi"
)

var _ = godotenv.Load()

var dbDSN = os.Getenv("CLARIO_DB_DSN")
var llmAPIURL = os.Getenv("CLARIO_LLM_API_URL")
var llmAPIKey = os.Getenv("CLARIO_LLM_API_KEY")
var llmTimeout = os.Getenv("CLARIO_LLM_TIMEOUT")
var llmModel = os.Getenv("CLARIO_LLM_MODEL")
var amqpURL = os.Getenv("CLARIO_AMQP_URL")
var amqpExchange = os.Getenv("CLARIO_AMQP_EXCHANGE")
var telegramToken = os.Getenv("CLARIO_TELEGRAM_TOKEN")
var slackToken = os.Getenv("CLARIO_SLACK_TOKEN")
var apiKeysEnv = os.Getenv("CLARIO_API_KEYS")
var quoteDir = os.Getenv("CLARIO_QUOTE_DIR")
var brochureURL = os.Getenv("CLARIO_BROCHURE_URL")
var listenAddr = os.Getenv("CLARIO_LISTEN_ADDR")

func init() {
	if llmAPIURL == "" {
		panic("CLARIO_LLM_API_URL not set")
	}
	if llmTimeout == "" {
		llmTimeout = "150s"
	}
	if amqpExchange == "" {
		amqpExchange = "clario.events"
	}
	if listenAddr == "" {
		listenAddr = ":3000"
	}
	if quoteDir == "" {
		quoteDir = "quotes"
	}
}

// parseAPIKeys reads key:organization pairs from CLARIO_API_KEYS.
func parseAPIKeys(raw string) map[string]uuid.UUID {
	keys := map[string]uuid.UUID{}
	for _, pair := range strings.Split(raw, ",") {
		key, org, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			continue
		}
		orgID, err := uuid.Parse(org)
		if err != nil {
			xlog.Warn("Skipping malformed api key pair", "pair", pair)
			continue
		}
		keys[key] = orgID
	}
	return keys
}

func main() {
	os.MkdirAll(quoteDir, 0755)

	// Without a DSN the whole stack runs on the in-memory store. Handy for
	// local evaluation; nothing survives a restart.
	var store db.Store
	if dbDSN != "" {
		gdb, err := db.Connect(dbDSN)
		if err != nil {
			panic(err)
		}
		store = db.NewSQLStore(gdb)
	} else {
		xlog.Warn("CLARIO_DB_DSN not set, running on the in-memory store")
		store = db.NewMemoryStore()
	}

	var publisher events.Publisher = events.NopPublisher{}
	if amqpURL != "" {
		p, err := events.NewAMQP(amqpURL, amqpExchange)
		if err != nil {
			panic(err)
		}
		publisher = p
		defer publisher.Close()
	}

	var senders []channels.Sender
	if telegramToken != "" {
		tg, err := channels.NewTelegram(telegramToken)
		if err != nil {
			panic(err)
		}
		senders = append(senders, tg)
	}
	if slackToken != "" {
		senders = append(senders, channels.NewSlack(slackToken))
	}
	registry := channels.NewRegistry(senders...)

	scorer := heat.NewScorer(store)
	resolver := identity.NewResolver(store, scorer, publisher)
	rt := router.NewRouter(store)
	builder := contextbuilder.NewBuilder(store)
	catalog := products.NewCatalog(store)
	ledger := billing.NewLedger(store, publisher)

	client := llm.NewClient(llmAPIKey, llmAPIURL, llmTimeout)
	documents := map[string]string{}
	if brochureURL != "" {
		documents[""] = brochureURL
	}
	executor := actions.DefaultExecutor(actions.Deps{
		Store:     store,
		Channels:  registry,
		Catalog:   catalog,
		Events:    publisher,
		LLM:       client,
		Model:     llmModel,
		QuoteDir:  quoteDir,
		Documents: documents,
	})

	pipe := pipeline.New(store, rt, builder, llm.NewGenerator(client), executor, ledger)
	formService := forms.NewService(store, resolver, rt)

	apiKeys := parseAPIKeys(apiKeysEnv)
	startJobs(store, resolver, scorer, apiKeys)

	app, err := webapi.New(webapi.Deps{
		Store:    store,
		Resolver: resolver,
		Scorer:   scorer,
		Router:   rt,
		Builder:  builder,
		Pipeline: pipe,
		Forms:    formService,
		Catalog:  catalog,
		Keys:     apiKeys,
	})
	if err != nil {
		panic(err)
	}

	log.Fatal(app.Listen(listenAddr))
}

// startJobs schedules the nightly auto-merge sweep and the hourly heat
// refresh for every configured organization.
func startJobs(store db.Store, resolver *identity.Resolver, scorer *heat.Scorer, apiKeys map[string]uuid.UUID) {
	orgs := map[uuid.UUID]bool{}
	for _, id := range apiKeys {
		orgs[id] = true
	}
	if len(orgs) == 0 {
		return
	}

	c := cron.New()
	c.AddFunc("@hourly", func() {
		ctx := context.Background()
		for orgID := range orgs {
			scorer.RecalculateAll(ctx, orgID)
		}
	})
	c.AddFunc("@midnight", func() {
		ctx := context.Background()
		for orgID := range orgs {
			merged, err := resolver.AutoMergeHighConfidence(ctx, orgID)
			if err != nil {
				xlog.Error("Auto-merge sweep", "org", orgID, "error", err)
				continue
			}
			if merged > 0 {
				xlog.Info("Auto-merge sweep folded duplicates", "org", orgID, "merged", merged)
			}
		}
	})
	c.Start()
}
