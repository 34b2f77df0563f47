package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"rewind-backend/internal/apperr"
	"rewind-backend/internal/media"
	"rewind-backend/internal/metrics"
	"rewind-backend/internal/models"
	"rewind-backend/internal/pinata"
	"rewind-backend/internal/records"
	"rewind-backend/internal/solana"
)

type ImageDownloader interface {
	FetchDataURI(ctx context.Context, url string) (string, error)
}

type ContentPinner interface {
	PinCoin(ctx context.Context, content pinata.CoinContent) (*pinata.PinnedCoin, error)
}

type CoinDeployer interface {
	Deploy(ctx context.Context, params solana.DeployParams) (*solana.DeployResult, error)
}

type ImageMirror interface {
	MirrorImage(imageCID, mimeType string, data []byte) (string, error)
}

// Observer is told about every status transition of a publish run.
type Observer func(models.PublishStatus)

// PublishService runs the upload, mint and persist stages for a mint form.
// Stages run strictly in order and a failure ends the run; nothing already
// pinned or deployed is rolled back.
type PublishService struct {
	downloader ImageDownloader
	pinner     ContentPinner
	deployer   CoinDeployer
	store      records.Store
	mirror     ImageMirror
	gateway    string
	metrics    *metrics.Collector
	logger     *zap.Logger
}

func NewPublishService(
	downloader ImageDownloader,
	pinner ContentPinner,
	deployer CoinDeployer,
	store records.Store,
	logger *zap.Logger,
) *PublishService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PublishService{
		downloader: downloader,
		pinner:     pinner,
		deployer:   deployer,
		store:      store,
		logger:     logger,
	}
}

// WithMirror enables best-effort mirroring of pinned images.
func (s *PublishService) WithMirror(mirror ImageMirror) *PublishService {
	s.mirror = mirror
	return s
}

// WithGateway makes results carry HTTP gateway links for the pinned content.
func (s *PublishService) WithGateway(gateway string) *PublishService {
	s.gateway = strings.TrimSpace(gateway)
	return s
}

func (s *PublishService) WithMetrics(collector *metrics.Collector) *PublishService {
	s.metrics = collector
	return s
}

// Publish validates form, then moves idle → uploading → minting → success,
// or to error at the failing stage. form is never modified. A failure to
// store the gallery record after a successful deploy is logged and does not
// change the outcome.
func (s *PublishService) Publish(ctx context.Context, form models.MintForm, owner string, observe Observer) (*models.PublishResult, error) {
	if observe == nil {
		observe = func(models.PublishStatus) {}
	}
	emit := func(status models.PublishStatus) {
		s.metrics.RecordTransition(string(status.State))
		observe(status)
	}

	if err := form.Validate(); err != nil {
		return nil, err
	}
	owner = strings.TrimSpace(owner)
	if owner != "" && !solana.IsAddress(owner) {
		return nil, apperr.Validation("owner is not a valid wallet address")
	}

	started := time.Now()
	submitted := form.Normalized()
	log := s.logger.With(zap.String("coin_name", submitted.Name), zap.String("symbol", submitted.Symbol))

	fail := func(stage models.PublishState, err error) (*models.PublishResult, error) {
		appErr := apperr.From(err)
		log.Warn("publish failed",
			zap.String("stage", string(stage)),
			zap.String("code", appErr.Code),
			zap.Error(err),
		)
		emit(models.PublishStatus{State: models.PublishError, Message: appErr.Detail()})
		s.metrics.RecordPublish(time.Since(started), false)
		return nil, appErr
	}

	emit(models.PublishStatus{State: models.PublishUploading, Message: "Uploading image and metadata to IPFS"})

	image, err := s.resolveImage(ctx, submitted.Image)
	if err != nil {
		return fail(models.PublishUploading, err)
	}

	pinned, err := s.Upload(ctx, pinata.CoinContent{
		Name:        submitted.Name,
		Description: submitted.Description,
		Symbol:      submitted.Symbol,
		Image:       image,
		Properties:  models.Pairs(submitted.Properties),
		Metadata:    models.Pairs(submitted.Metadata),
	})
	if err != nil {
		return fail(models.PublishUploading, err)
	}
	log.Info("content pinned", zap.String("cid", pinned.CID), zap.String("image_cid", pinned.ImageCID))

	emit(models.PublishStatus{State: models.PublishMinting, Message: "Deploying coin"})

	deployed, err := s.Mint(ctx, solana.DeployParams{
		Name:            submitted.Name,
		Symbol:          submitted.Symbol,
		URI:             pinned.CID,
		PayoutRecipient: owner,
	})
	if err != nil {
		return fail(models.PublishMinting, err)
	}
	log.Info("coin deployed", zap.String("coin_address", deployed.Address), zap.String("txn", deployed.Txn))

	result := &models.PublishResult{
		CoinAddress: deployed.Address,
		ExplorerURL: deployed.ExplorerURL,
		Txn:         deployed.Txn,
		CID:         pinned.CID,
		ImageCID:    pinned.ImageCID,
	}
	if s.gateway != "" {
		result.ImageURL = pinata.GatewayURL(s.gateway, pinned.ImageCID)
		result.MetadataURL = pinata.GatewayURL(s.gateway, pinned.CID)
	}

	if s.mirror != nil {
		mirrorURL, err := s.mirror.MirrorImage(pinned.ImageCID, image.MIMEType, image.Data)
		if err != nil {
			log.Warn("image mirror failed", zap.String("image_cid", pinned.ImageCID), zap.Error(err))
		} else {
			result.MirrorURL = mirrorURL
		}
	}

	rec, err := s.store.Append(ctx, models.MemoryRecord{
		Image:       submitted.Image,
		Title:       submitted.Name,
		Description: submitted.Description,
		Owner:       owner,
		CoinAddress: deployed.Address,
		ExplorerURL: deployed.ExplorerURL,
	})
	if err != nil {
		// The coin exists on chain without a gallery record. This log line is
		// the only trace of it.
		s.metrics.RecordPersistFailure()
		log.Error("failed to persist memory record",
			zap.String("coin_address", deployed.Address),
			zap.String("explorer_url", deployed.ExplorerURL),
			zap.String("owner", owner),
			zap.Error(err),
		)
	} else {
		result.RecordID = rec.ID
	}

	emit(models.PublishStatus{State: models.PublishSuccess, Message: "Memory minted", Result: result})
	s.metrics.RecordPublish(time.Since(started), true)
	return result, nil
}

// Upload pins the image and the metadata document that references it.
func (s *PublishService) Upload(ctx context.Context, content pinata.CoinContent) (*pinata.PinnedCoin, error) {
	pinned, err := s.pinner.PinCoin(ctx, content)
	if err != nil {
		appErr := apperr.From(err)
		if appErr.Code == "" && appErr.Kind == apperr.KindCollaborator {
			appErr.Code = apperr.CodeUploadFailed
		}
		return nil, appErr
	}
	return pinned, nil
}

// Mint deploys a coin whose metadata lives at params.URI.
func (s *PublishService) Mint(ctx context.Context, params solana.DeployParams) (*solana.DeployResult, error) {
	params.URI = pinata.NormalizeURI(params.URI)
	deployed, err := s.deployer.Deploy(ctx, params)
	if err != nil {
		return nil, apperr.Collaborator(apperr.CodeMintFailed, "Failed to deploy coin", err)
	}
	return deployed, nil
}

func (s *PublishService) resolveImage(ctx context.Context, image string) (*media.DataURI, error) {
	image = strings.TrimSpace(image)
	if !media.IsDataURI(image) {
		if !strings.HasPrefix(image, "http://") && !strings.HasPrefix(image, "https://") {
			return nil, apperr.Validation("image must be a data URI or an http(s) URL")
		}
		dataURI, err := s.downloader.FetchDataURI(ctx, image)
		if err != nil {
			return nil, apperr.Collaborator(apperr.CodeDownloadFailed, "Failed to download image", err)
		}
		image = dataURI
	}

	parsed, err := media.ParseDataURI(image)
	if err != nil {
		return nil, apperr.Validation("image is not a valid data URI: " + err.Error())
	}
	return parsed, nil
}
