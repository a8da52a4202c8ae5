package demo

import (
	"context"
	"errors"
	"fmt"
	"io"

	"vinr.eu/secretsdemo/internal/aws"
	"vinr.eu/secretsdemo/internal/errs"
	"vinr.eu/secretsdemo/internal/logger"
	"vinr.eu/secretsdemo/internal/presenter"
)

const (
	Banner         = "AWS Secrets Manager Demo"
	SuccessMessage = "Successfully retrieved the secret"
)

var (
	ErrWriteOutput = errors.New("demo: write output failed")
)

type SecretGetter interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// Run fetches secretID once and prints it. A retrieval failure is reported on
// stderr and returned; a payload that is not a JSON object is printed raw.
func Run(ctx context.Context, getter SecretGetter, secretID string, stdout, stderr io.Writer) error {
	if _, err := fmt.Fprintln(stdout, Banner); err != nil {
		return errs.Wrap(ErrWriteOutput, err)
	}

	logger.Debug(ctx, "fetching secret", "secret_id", secretID)
	payload, err := getter.GetSecret(ctx, secretID)
	if err != nil {
		logger.Error(ctx, "failed to retrieve secret",
			"secret_id", secretID,
			"code", aws.ErrorCode(err),
			"error", err,
		)
		if _, werr := fmt.Fprintf(stderr, "Error retrieving secret: %v\n", err); werr != nil {
			return errors.Join(err, errs.Wrap(ErrWriteOutput, werr))
		}
		return err
	}

	p := presenter.Present(payload)
	if p.Err != nil {
		logger.Info(ctx, "showing raw secret value", "secret_id", secretID, "reason", p.Err)
		if _, err := fmt.Fprintf(stderr, "Error parsing secret JSON: %v\n", p.Err); err != nil {
			return errs.Wrap(ErrWriteOutput, err)
		}
	} else {
		logger.Debug(ctx, "parsed secret payload", "secret_id", secretID, "fields", len(p.Fields))
	}

	if err := presenter.Render(stdout, p); err != nil {
		return errs.Wrap(ErrWriteOutput, err)
	}
	if _, err := fmt.Fprintln(stdout, SuccessMessage); err != nil {
		return errs.Wrap(ErrWriteOutput, err)
	}
	return nil
}
