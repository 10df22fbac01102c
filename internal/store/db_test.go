package store_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/geowfs/wfs-gateway/internal/store"
	"github.com/geowfs/wfs-gateway/internal/store/migrations"
)

var _ = Describe("NewDB", func() {
	It("should open an in-memory catalog for an empty path", func() {
		db, err := store.NewDB("")
		Expect(err).NotTo(HaveOccurred())
		defer db.Close()

		Expect(migrations.Run(context.Background(), db)).To(Succeed())
	})

	It("should create the catalog directory and keep layers across opens", func() {
		ctx := context.Background()
		path := filepath.Join(GinkgoT().TempDir(), "data", "catalog.duckdb")

		db, err := store.NewDB(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(migrations.Run(ctx, db)).To(Succeed())
		Expect(store.NewStore(db).Layers().Save(ctx, roadsLayer())).To(Succeed())
		Expect(db.Close()).To(Succeed())

		_, err = os.Stat(path)
		Expect(err).NotTo(HaveOccurred())

		db, err = store.NewDB(path)
		Expect(err).NotTo(HaveOccurred())
		defer db.Close()

		var dir string
		Expect(db.QueryRowContext(ctx, "SELECT current_setting('extension_directory')").Scan(&dir)).To(Succeed())
		Expect(dir).To(Equal(filepath.Dir(path)))

		layer, err := store.NewStore(db).Layers().Get(ctx, "roads")
		Expect(err).NotTo(HaveOccurred())
		Expect(layer.SourceTable).To(Equal("roads"))
	})
})
