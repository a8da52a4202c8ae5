package aws

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"

	appconfig "vinr.eu/secretsdemo/internal/config"
	"vinr.eu/secretsdemo/internal/errs"
)

var (
	ErrLoadConfig = errors.New("aws/config: failed to load config")
)

// LoadConfig builds the SDK config from cfg. Local mode pins static
// credentials and the endpoint; server mode pins only the region and leaves
// credentials to the default chain.
func LoadConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	switch cfg.Mode {
	case appconfig.ModeLocal, "":
		return loadLocal(ctx, cfg)
	case appconfig.ModeServer:
		return loadRemote(ctx, cfg)
	default:
		return aws.Config{}, errs.WrapMsg(appconfig.ErrInvalidMode, "got "+cfg.Mode)
	}
}

func loadLocal(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(StaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey)),
	}
	if cfg.EndpointURL != "" {
		opts = append(opts, config.WithBaseEndpoint(cfg.EndpointURL))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, errs.Wrap(ErrLoadConfig, err)
	}
	return awsCfg, nil
}

func loadRemote(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.EndpointURL != "" {
		opts = append(opts, config.WithBaseEndpoint(cfg.EndpointURL))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, errs.Wrap(ErrLoadConfig, err)
	}
	return awsCfg, nil
}

func StaticCredentials(accessKeyID, secretAccessKey string) aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
		return aws.Credentials{
			AccessKeyID:     accessKeyID,
			SecretAccessKey: secretAccessKey,
			Source:          "secretsdemo",
		}, nil
	})
}
