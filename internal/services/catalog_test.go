package services_test

import (
	"context"
	"database/sql"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/geowfs/wfs-gateway/internal/models"
	"github.com/geowfs/wfs-gateway/internal/services"
	"github.com/geowfs/wfs-gateway/internal/store"
	"github.com/geowfs/wfs-gateway/internal/store/migrations"
	srvErrors "github.com/geowfs/wfs-gateway/pkg/errors"
	"github.com/geowfs/wfs-gateway/pkg/scheduler"
)

var _ = Describe("CatalogService", func() {
	var (
		ctx    context.Context
		db     *sql.DB
		st     *store.Store
		sched  *scheduler.Scheduler
		source *mockSource
		srv    *services.CatalogService
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())

		err = migrations.Run(ctx, db)
		Expect(err).NotTo(HaveOccurred())

		st = store.NewStore(db)
		sched = scheduler.NewScheduler(1)
		source = &mockSource{layers: []models.Layer{roadsLayer()}}
		srv = services.NewCatalogService(sched, st, source, services.SyncOptions{Schema: "public"})
	})

	AfterEach(func() {
		srv.Stop()
		if sched != nil {
			sched.Close()
		}
		if db != nil {
			db.Close()
		}
	})

	Describe("Status", func() {
		It("should be idle before any sync", func() {
			Expect(srv.Status(ctx).State).To(Equal(models.SyncStateIdle))
		})
	})

	Describe("Sync", func() {
		It("should store introspected layers", func() {
			status, err := srv.Sync(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(status.State).To(Equal(models.SyncStateDone))
			Expect(status.Layers).To(Equal(1))

			layer, err := srv.Get(ctx, "roads")
			Expect(err).NotTo(HaveOccurred())
			Expect(layer.Columns).To(HaveLen(3))
		})

		It("should report introspection errors", func() {
			source.introspectErr = errors.New("relation does not exist")

			status, err := srv.Sync(ctx)
			Expect(err).To(MatchError("relation does not exist"))
			Expect(status.State).To(Equal(models.SyncStateError))

			layers, err := srv.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(layers).To(BeEmpty())
		})

		It("should keep the result of the last sync in the history", func() {
			_, err := srv.Sync(ctx)
			Expect(err).NotTo(HaveOccurred())

			fresh := services.NewCatalogService(sched, st, source, services.SyncOptions{})
			status := fresh.Status(ctx)
			Expect(status.State).To(Equal(models.SyncStateDone))
			Expect(status.Layers).To(Equal(1))
		})

		It("should fail without a feature source", func() {
			srv = services.NewCatalogService(sched, st, nil, services.SyncOptions{})
			_, err := srv.Sync(ctx)
			Expect(srvErrors.IsSourceUnavailableError(err)).To(BeTrue())
		})
	})

	Describe("Start", func() {
		It("should refuse a second sync while one is running", func() {
			source.block = make(chan struct{})

			Expect(srv.Start(ctx)).To(Succeed())
			Eventually(func() models.SyncStateType {
				return srv.Status(ctx).State
			}).Should(Equal(models.SyncStateRunning))

			err := srv.Start(ctx)
			Expect(srvErrors.IsSyncInProgressError(err)).To(BeTrue())

			close(source.block)
			Eventually(func() models.SyncStateType {
				return srv.Status(ctx).State
			}, 2*time.Second).Should(Equal(models.SyncStateDone))
		})

		It("should end in error when stopped", func() {
			source.block = make(chan struct{})

			Expect(srv.Start(ctx)).To(Succeed())
			srv.Stop()

			status := srv.Status(ctx)
			Expect(status.State).To(Equal(models.SyncStateError))
			Expect(status.Error).To(MatchError(context.Canceled))
		})
	})

	Describe("Import", func() {
		It("should replace the catalog", func() {
			_, err := srv.Sync(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(srv.Import(ctx, []models.Layer{{
				Name:        "rivers",
				SourceTable: "rivers",
				Columns:     []models.Column{{Name: "geom", Type: "geometry", Geometry: true}},
			}})).To(Succeed())

			layers, err := srv.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(layers).To(HaveLen(1))
			Expect(layers[0].Name).To(Equal("rivers"))
		})
	})
})
