package generator

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/jaswdr/faker"
	"github.com/sirupsen/logrus"
)

// ExampleSQL is the customers / orders / products schema shipped with the tool.
const ExampleSQL = `CREATE TABLE 客户表 (
    客户ID INT PRIMARY KEY,
    姓名 VARCHAR(100),
    邮箱 VARCHAR(100),
    电话 VARCHAR(20)
);

CREATE TABLE 订单表 (
    订单ID INT PRIMARY KEY,
    客户ID INT,
    下单时间 TIMESTAMP,
    总金额 DECIMAL(10,2)
);

CREATE TABLE 商品表 (
    商品ID INT PRIMARY KEY,
    商品名称 VARCHAR(200),
    价格 DECIMAL(10,2),
    库存 INT
);
`

// columnTemplates pair well known column names with a plausible declaration.
// Declarations contain no commas so the extractor keeps each type whole.
var columnTemplates = []struct {
	name     string
	dataType string
}{
	{"email", "VARCHAR(255) NOT NULL"},
	{"first_name", "VARCHAR(100)"},
	{"last_name", "VARCHAR(100)"},
	{"phone", "VARCHAR(20)"},
	{"address", "VARCHAR(255)"},
	{"city", "VARCHAR(100)"},
	{"country", "VARCHAR(100)"},
	{"zip_code", "VARCHAR(10)"},
	{"description", "TEXT"},
	{"url", "VARCHAR(2048)"},
	{"ip_address", "VARCHAR(45)"},
	{"color", "CHAR(7)"},
	{"uuid", "CHAR(36)"},
	{"created_at", "TIMESTAMP DEFAULT CURRENT_TIMESTAMP"},
	{"updated_at", "TIMESTAMP"},
	{"is_active", "BOOLEAN DEFAULT TRUE"},
	{"quantity", "INT"},
	{"price", "DOUBLE PRECISION"},
	{"status", "VARCHAR(16) DEFAULT 'new'"},
}

// SampleGenerator produces random but well formed CREATE TABLE scripts,
// handy for trying out layouts with many tables.
type SampleGenerator struct {
	Faker  faker.Faker
	Logger *logrus.Logger
}

// NewSampleGenerator creates a new sample generator
func NewSampleGenerator(logger *logrus.Logger) *SampleGenerator {
	return &SampleGenerator{
		Faker:  faker.New(),
		Logger: logger,
	}
}

// NewSeededSampleGenerator creates a sample generator whose output only depends on seed
func NewSeededSampleGenerator(seed int64, logger *logrus.Logger) *SampleGenerator {
	return &SampleGenerator{
		Faker:  faker.NewWithSeed(rand.NewSource(seed)),
		Logger: logger,
	}
}

// Generate returns a script with numTables tables, each with an id column
// followed by up to seven distinct random columns.
func (sg *SampleGenerator) Generate(numTables int) string {
	var sb strings.Builder
	used := make(map[string]bool)

	for i := 0; i < numTables; i++ {
		name := sg.tableName(used)

		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "CREATE TABLE `%s` (\n", name)
		sb.WriteString("    id INT PRIMARY KEY AUTO_INCREMENT")

		numColumns := sg.Faker.IntBetween(2, 7)
		picked := make(map[int]bool)
		for j := 0; j < numColumns; j++ {
			k := sg.Faker.IntBetween(0, len(columnTemplates)-1)
			if picked[k] {
				continue
			}
			picked[k] = true
			col := columnTemplates[k]
			fmt.Fprintf(&sb, ",\n    %s %s", col.name, col.dataType)
		}
		sb.WriteString("\n);\n")
	}

	sg.Logger.Debugf("Generated sample schema with %d tables", numTables)
	return sb.String()
}

// tableName picks an unused lowercase word, falling back to a numbered name
func (sg *SampleGenerator) tableName(used map[string]bool) string {
	for attempt := 0; attempt < 10; attempt++ {
		name := strings.ToLower(sg.Faker.Lorem().Word()) + "s"
		if !used[name] {
			used[name] = true
			return name
		}
	}
	name := fmt.Sprintf("table_%d", len(used)+1)
	used[name] = true
	return name
}
