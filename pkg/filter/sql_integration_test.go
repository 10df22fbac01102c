package filter

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/duckdb/duckdb-go/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Filter Integration with DuckDB", func() {
	var (
		db         *sql.DB
		translator *Translator
	)

	BeforeEach(func() {
		connector, err := duckdb.NewConnector("", nil)
		Expect(err).ToNot(HaveOccurred())

		db = sql.OpenDB(connector)
		Expect(db.Ping()).To(Succeed())

		_, err = db.Exec(`CREATE TABLE roads (
			gid INTEGER PRIMARY KEY,
			name VARCHAR,
			lanes INTEGER,
			speed DOUBLE
		)`)
		Expect(err).ToNot(HaveOccurred())

		_, err = db.Exec(`INSERT INTO roads VALUES
			(1, 'Main Street', 2, 50),
			(2, 'main street', 4, 70.5),
			(3, 'Harbour Road', 1, 30),
			(4, 'O''Connell Street', 6, -4.5),
			(5, NULL, 3, 90)`)
		Expect(err).ToNot(HaveOccurred())

		translator = NewTranslator(NewStaticCatalog(&Schema{
			Layer: "roads",
			Columns: []Column{
				{Name: "gid", Type: "int4"},
				{Name: "name", Type: "varchar"},
				{Name: "lanes", Type: "int4"},
				{Name: "speed", Type: "float8"},
			},
			IDColumn: "gid",
		}))
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	queryRoads := func(where string) ([]int, error) {
		rows, err := db.Query(`SELECT gid FROM roads WHERE ` + where + ` ORDER BY gid`)
		if err != nil {
			return nil, fmt.Errorf("query failed: %w\nFilter SQL: %s", err, where)
		}
		defer rows.Close()

		var ids []int
		for rows.Next() {
			var id int
			if err := rows.Scan(&id); err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return ids, rows.Err()
	}

	filterRoads := func(predicate string) ([]int, error) {
		where, err := translator.TranslateXML(context.Background(), "roads", wrap(predicate))
		if err != nil {
			return nil, err
		}
		return queryRoads(where)
	}

	It("should filter on text equality", func() {
		ids, err := filterRoads(`<PropertyIsEqualTo><PropertyName>name</PropertyName><Literal>Main Street</Literal></PropertyIsEqualTo>`)
		Expect(err).ToNot(HaveOccurred())
		Expect(ids).To(Equal([]int{1}))
	})

	It("should filter case insensitively", func() {
		ids, err := filterRoads(`<PropertyIsEqualTo matchCase="false"><PropertyName>name</PropertyName><Literal>MAIN STREET</Literal></PropertyIsEqualTo>`)
		Expect(err).ToNot(HaveOccurred())
		Expect(ids).To(Equal([]int{1, 2}))
	})

	It("should match quoted literals", func() {
		ids, err := filterRoads(`<PropertyIsEqualTo><PropertyName>name</PropertyName><Literal>O'Connell Street</Literal></PropertyIsEqualTo>`)
		Expect(err).ToNot(HaveOccurred())
		Expect(ids).To(Equal([]int{4}))
	})

	It("should filter on numeric ranges", func() {
		ids, err := filterRoads(`<PropertyIsBetween><PropertyName>lanes</PropertyName>` +
			`<LowerBoundary><Literal>2</Literal></LowerBoundary>` +
			`<UpperBoundary><Literal>4</Literal></UpperBoundary></PropertyIsBetween>`)
		Expect(err).ToNot(HaveOccurred())
		Expect(ids).To(Equal([]int{1, 2, 5}))
	})

	It("should combine predicates", func() {
		ids, err := filterRoads(`<Or>` +
			`<And>` +
			`<PropertyIsGreaterThan><PropertyName>lanes</PropertyName><Literal>1</Literal></PropertyIsGreaterThan>` +
			`<PropertyIsLessThan><PropertyName>speed</PropertyName><Literal>60</Literal></PropertyIsLessThan>` +
			`</And>` +
			`<PropertyIsEqualTo><PropertyName>gid</PropertyName><Literal>3</Literal></PropertyIsEqualTo>` +
			`</Or>`)
		Expect(err).ToNot(HaveOccurred())
		Expect(ids).To(Equal([]int{1, 3, 4}))
	})

	It("should negate predicates", func() {
		ids, err := filterRoads(`<Not><PropertyIsGreaterThanOrEqualTo><PropertyName>lanes</PropertyName><Literal>3</Literal></PropertyIsGreaterThanOrEqualTo></Not>`)
		Expect(err).ToNot(HaveOccurred())
		Expect(ids).To(Equal([]int{1, 3}))
	})

	It("should evaluate arithmetic", func() {
		ids, err := filterRoads(`<PropertyIsGreaterThan>` +
			`<Mul><PropertyName>lanes</PropertyName><Add><Literal>10</Literal><Literal>5</Literal></Add></Mul>` +
			`<Literal>50</Literal></PropertyIsGreaterThan>`)
		Expect(err).ToNot(HaveOccurred())
		Expect(ids).To(Equal([]int{2, 4}))
	})

	It("should evaluate scalar functions", func() {
		ids, err := filterRoads(`<PropertyIsLessThan><Function name="abs"><PropertyName>speed</PropertyName></Function><Literal>10</Literal></PropertyIsLessThan>`)
		Expect(err).ToNot(HaveOccurred())
		Expect(ids).To(Equal([]int{4}))
	})

	It("should evaluate aggregate subqueries", func() {
		ids, err := filterRoads(`<PropertyIsEqualTo><PropertyName>speed</PropertyName><Function name="max"><PropertyName>speed</PropertyName></Function></PropertyIsEqualTo>`)
		Expect(err).ToNot(HaveOccurred())
		Expect(ids).To(Equal([]int{5}))
	})

	It("should not let literals escape the string context", func() {
		ids, err := filterRoads(`<PropertyIsEqualTo><PropertyName>name</PropertyName><Literal>x' OR '1'='1</Literal></PropertyIsEqualTo>`)
		Expect(err).ToNot(HaveOccurred())
		Expect(ids).To(BeEmpty())
	})

	It("should select feature identifiers", func() {
		where, err := translator.TranslateFeatureIDs(context.Background(), "roads", "roads.2,roads.4")
		Expect(err).ToNot(HaveOccurred())

		ids, err := queryRoads(where)
		Expect(err).ToNot(HaveOccurred())
		Expect(ids).To(Equal([]int{2, 4}))
	})
})
