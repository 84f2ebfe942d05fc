package config

import "github.com/incsteps/nf-plugins-stats/internal/taxonomy"

var Groups = taxonomy.Groups{
	{
		Name: "Cloud Integration",
		Members: []string{
			"nf-amazon",
			"nf-azure",
			"nf-google",
			"nf-tencentcloud",
			"nf-snowflake",
			"nf-codecommit",
			"nf-quilt",
			"nf-cloudcache",
		},
	},
	{
		Name:    "Executors and Orchestration",
		Members: []string{"nf-ignite", "nf-k8s", "nf-nomad", "nf-jarvice", "nf-wr", "yellowdog", "nf-float"},
	},
	{
		// nf-cloudcache is listed under Cloud Integration first and resolves there
		Name:    "Optimization and Performance Utilities",
		Members: []string{"nf-boost", "nf-cloudcache", "nf-pgcache", "nf-parquet"},
	},
	{
		Name:    "Data and Analysis Tools",
		Members: []string{"nf-sqldb", "nf-ffq", "nf-schema", "nf-validation", "nf-prov", "nf-ga4gh"},
	},
	{
		Name:    "Development and Debugging Support",
		Members: []string{"nf-cachebrowser", "nf-console", "nf-dotenv", "nf-datatrail", "nf-hello"},
	},
	{
		Name:    "Sustainability and Environment",
		Members: []string{"nf-co2footprint"},
	},
	{
		Name:    "Specialized Integrations",
		Members: []string{"nf-tower", "nf-cws", "nf-iridanext", "nf-wave", "nf-weblog", "nf-gpt"},
	},
	{
		Name: taxonomy.OthersName,
	},
}
