package config

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/go-github/v59/github"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/oauth2"
)

type GeneratorConfig struct {
	Stage               string        `envconfig:"STAGE" default:"dev"`
	ProjectID           string        `envconfig:"GOOGLE_CLOUD_PROJECT_ID"`
	CatalogURL          string        `envconfig:"CATALOG_URL" default:"https://raw.githubusercontent.com/nextflow-io/plugins/main/plugins.json"`
	ContentDir          string        `envconfig:"CONTENT_DIR" default:"content"`
	RawContentURL       string        `envconfig:"RAW_CONTENT_URL" default:"https://raw.githubusercontent.com"`
	GitHubAPIURL        string        `envconfig:"GITHUB_API_URL"`
	HTTPTimeout         time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	HTTPRetryMax        int           `envconfig:"HTTP_RETRY_MAX" default:"0"`
	CacheTTL            time.Duration `envconfig:"CACHE_TTL" default:"10m"`
	ContentArchive      string        `envconfig:"CONTENT_ARCHIVE"`
	ContentBucket       string        `envconfig:"CONTENT_BUCKET"`
	R2AccessKeyID       string        `envconfig:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey   string        `envconfig:"R2_SECRET_ACCESS_KEY"`
	CloudflareAccountID string        `envconfig:"CLOUDFLARE_ACCOUNT_ID"`
	EnableMetrics       bool          `envconfig:"ENABLE_METRICS"`
	Version             string        `ignored:"true"`
	GitHubToken         string        `ignored:"true"`
}

func NewGeneratorConfigFromEnv() (*GeneratorConfig, error) {
	var gCfg GeneratorConfig
	err := envconfig.Process("", &gCfg)
	if err != nil {
		return nil, err
	}
	return &gCfg, nil
}

func (g *GeneratorConfig) Validate() error {
	if g.GitHubToken == "" {
		return fmt.Errorf("no GitHub token provided")
	}
	if g.CatalogURL == "" {
		return fmt.Errorf("no catalog URL provided")
	}
	if g.ContentDir == "" {
		return fmt.Errorf("no content directory provided")
	}
	if g.EnableMetrics && g.ProjectID == "" {
		return fmt.Errorf("metrics are enabled but GOOGLE_CLOUD_PROJECT_ID is missing")
	}
	if g.PublishToBucket() && (g.R2AccessKeyID == "" || g.R2SecretAccessKey == "" || g.CloudflareAccountID == "") {
		return fmt.Errorf("CONTENT_BUCKET is set but the R2 credentials are incomplete")
	}
	return nil
}

// CreateGitHubClient returns a client that sends GitHubToken as bearer token
// on every request.
func (g *GeneratorConfig) CreateGitHubClient() (*github.Client, error) {
	oauthClient := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: g.GitHubToken}))
	oauthClient.Timeout = g.HTTPTimeout
	ghClient := github.NewClient(oauthClient)
	if g.GitHubAPIURL == "" {
		return ghClient, nil
	}
	return ghClient.WithEnterpriseURLs(g.GitHubAPIURL, g.GitHubAPIURL)
}

// CreateHTTPClient returns the client used for catalog and raw-content
// requests. Non-success responses are handed back to the caller; only
// transport faults surface as errors.
func (g *GeneratorConfig) CreateHTTPClient() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = g.HTTPRetryMax
	client.HTTPClient.Timeout = g.HTTPTimeout
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return client
}

func (g *GeneratorConfig) PublishToBucket() bool {
	return g.ContentBucket != ""
}

func (g *GeneratorConfig) r2CloudflareEndpointResolver(_, _ string, _ ...interface{}) (aws.Endpoint, error) {
	return aws.Endpoint{
		URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", g.CloudflareAccountID),
	}, nil
}

func (g *GeneratorConfig) CreateS3Client() (*s3.Client, error) {
	staticCredentialsProvider := credentials.NewStaticCredentialsProvider(
		g.R2AccessKeyID,
		g.R2SecretAccessKey,
		"",
	)
	s3Cfg, err := awsConfig.LoadDefaultConfig(context.TODO(),
		awsConfig.WithRegion("auto"),
		awsConfig.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(g.r2CloudflareEndpointResolver)),
		awsConfig.WithCredentialsProvider(staticCredentialsProvider),
	)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(s3Cfg), nil
}

func (g *GeneratorConfig) GetBucket() *string {
	return &g.ContentBucket
}
