package aws

import (
	"context"
	"encoding/base64"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/smithy-go"

	"vinr.eu/secretsdemo/internal/errs"
)

var (
	ErrSMGetSecret   = errors.New("aws/secretsmanager: failed to get secret")
	ErrEmptySecretID = errors.New("aws/secretsmanager: secret id is empty")
)

// SecretValueAPI is the slice of the Secrets Manager client the fetcher uses.
type SecretValueAPI interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type SecretsManagerClient struct {
	client SecretValueAPI
}

func NewSecretsManagerClient(cfg aws.Config) *SecretsManagerClient {
	return NewSecretsManagerClientFromAPI(secretsmanager.NewFromConfig(cfg))
}

func NewSecretsManagerClientFromAPI(api SecretValueAPI) *SecretsManagerClient {
	return &SecretsManagerClient{
		client: api,
	}
}

// GetSecret returns the secret payload unmodified. Binary secrets come back
// base64 encoded. The call is made exactly once; retries belong to the SDK.
func (s *SecretsManagerClient) GetSecret(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", ErrEmptySecretID
	}
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return "", errs.WrapMsgErr(ErrSMGetSecret, name, err)
	}
	if out.SecretString != nil {
		return *out.SecretString, nil
	}
	if out.SecretBinary != nil {
		return base64.StdEncoding.EncodeToString(out.SecretBinary), nil
	}
	return "", nil
}

// ErrorCode returns the AWS error code carried by err, or "" if there is none.
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
