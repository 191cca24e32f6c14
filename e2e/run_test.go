package e2e_test

import (
	"context"
	"io"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/arenalab/tourneyprobe/internal/api"
	"github.com/arenalab/tourneyprobe/internal/config"
	"github.com/arenalab/tourneyprobe/internal/fixture"
	"github.com/arenalab/tourneyprobe/internal/probe"
	"github.com/arenalab/tourneyprobe/internal/report"
	"github.com/arenalab/tourneyprobe/internal/runstate"
	"github.com/arenalab/tourneyprobe/internal/teardown"
)

// harness wires the full pipeline against a fake server, the way the run
// command does.
type harness struct {
	fake     *fakeServer
	cfg      *config.Config
	client   *api.Client
	store    *runstate.Store
	rec      *runstate.Record
	reporter *report.Reporter
}

func newHarness(dataDir string) *harness {
	fake := newFakeServer()
	DeferCleanup(fake.Close)

	cfg := config.DefaultConfig()
	cfg.BaseURL = fake.URL()
	cfg.WSURL = fake.WSURL()
	cfg.AuthToken = fakeAuthToken
	cfg.AdminSecret = fakeAdminSecret
	cfg.WSTimeout = 2 * time.Second
	cfg.Visibility = config.Visibility{
		InitialInterval: time.Millisecond,
		MaxInterval:     10 * time.Millisecond,
		MaxAttempts:     20,
		FallbackDelay:   time.Millisecond,
	}

	store, err := runstate.NewStore(dataDir)
	Expect(err).NotTo(HaveOccurred())

	return &harness{
		fake:     fake,
		cfg:      cfg,
		client:   api.NewClient(cfg),
		store:    store,
		rec:      runstate.NewRecord(),
		reporter: report.NewReporter(io.Discard, true),
	}
}

func (h *harness) build(ctx context.Context) error {
	builder := fixture.NewBuilder(h.client, h.rec, h.reporter, h.cfg.Visibility)
	builder.SetPersist(h.store.Save)
	return builder.Build(ctx)
}

func (h *harness) probeAll(ctx context.Context) []probe.Result {
	runner := probe.NewRunner(h.client, h.rec, h.reporter, h.cfg)
	runner.SetPersist(h.store.Save)
	return runner.RunAll(ctx)
}

func (h *harness) teardown(ctx context.Context) []teardown.Outcome {
	return teardown.NewSequencer(h.client, h.reporter).Teardown(ctx, h.rec)
}

var _ = Describe("full harness run", func() {
	var h *harness

	BeforeEach(func() {
		h = newHarness(GinkgoT().TempDir())
	})

	It("builds, probes, and unwinds in exact reverse order", func(ctx SpecContext) {
		By("building the fixture")
		Expect(h.build(ctx)).To(Succeed())
		Expect(h.rec.Len()).To(Equal(8))
		Expect(h.store.Exists()).To(BeTrue(), "record persisted after each create")

		By("running the probes")
		results := h.probeAll(ctx)
		Expect(results).To(HaveLen(6))
		for _, r := range results {
			Expect(r.Passed).To(BeTrue(), "%s: %s", r.Name, r.Detail)
		}

		By("recording the vote event the start-vote probe created")
		Expect(h.rec.IDs(runstate.KindVoteEvent)).To(HaveLen(1))
		Expect(h.rec.Len()).To(Equal(9))

		By("tearing down in exact reverse creation order")
		outcomes := h.teardown(ctx)
		Expect(outcomes).To(HaveLen(9))
		Expect(teardown.Failed(outcomes)).To(BeZero())

		reversed := h.rec.ReverseOrder()
		for i, o := range outcomes {
			Expect(o.Kind).To(Equal(reversed[i].Kind))
			Expect(o.ID).To(Equal(reversed[i].ID))
			Expect(o.Status).To(Equal(200), "%s %d must exist when its delete arrives", o.Kind, o.ID)
		}
		Expect(outcomes[0].Kind).To(Equal(runstate.KindVoteEvent))
		Expect(outcomes[len(outcomes)-1].Kind).To(Equal(runstate.KindUser))

		By("leaving no live resources behind")
		Expect(h.fake.live()).To(BeEmpty())
	})

	It("unwinds only what was created when the fixture aborts", func(ctx SpecContext) {
		h.fake.failTournamentCreate = true

		err := h.build(ctx)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("create tournament"))
		Expect(h.rec.Len()).To(Equal(2), "only the two users were created")

		outcomes := h.teardown(ctx)
		Expect(outcomes).To(HaveLen(2))
		Expect(teardown.Failed(outcomes)).To(BeZero())
		for _, o := range outcomes {
			Expect(o.Kind).To(Equal(runstate.KindUser))
		}
		Expect(h.fake.live()).To(BeEmpty())
	})

	It("tolerates an existing registration on register", func(ctx SpecContext) {
		h.fake.registerStatus = 409

		Expect(h.build(ctx)).To(Succeed())

		results := h.probeAll(ctx)
		var register probe.Result
		for _, r := range results {
			if r.Name == "register for tournament" {
				register = r
			}
		}
		Expect(register.Passed).To(BeTrue(), register.Detail)
		Expect(register.Status).To(Equal(409))

		Expect(teardown.Failed(h.teardown(ctx))).To(BeZero())
	})

	It("cleans up a kept run from the persisted record", func(ctx SpecContext) {
		By("building and keeping the fixture")
		Expect(h.build(ctx)).To(Succeed())
		Expect(h.store.Save(h.rec)).To(Succeed())

		By("loading the record in a fresh store, as cleanup does")
		store2, err := runstate.NewStore(filepath.Dir(h.store.RunPath()))
		Expect(err).NotTo(HaveOccurred())
		loaded, err := store2.Load()
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Len()).To(Equal(h.rec.Len()))

		By("tearing down from the loaded record")
		seq := teardown.NewSequencer(h.client, h.reporter)
		outcomes := seq.Teardown(ctx, loaded)
		Expect(teardown.Failed(outcomes)).To(BeZero())
		Expect(h.fake.live()).To(BeEmpty())

		Expect(store2.Remove()).To(Succeed())
		Expect(store2.Exists()).To(BeFalse())
	})
})
