package minio

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/ClauseWise/internal/config"
	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/ClauseWise/pkg/errors"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

type ArchiveTestSuite struct {
	suite.Suite
	api     *MockObjectAPI
	client  *Client
	archive Archive
}

func (s *ArchiveTestSuite) SetupTest() {
	s.api = new(MockObjectAPI)
	s.client = NewClientWithAPI(s.api, "cw-test", logging.NewNopLogger())
	s.archive = NewArchive(s.client, logging.NewNopLogger())
}

func (s *ArchiveTestSuite) TearDownTest() {
	s.api.AssertExpectations(s.T())
}

func (s *ArchiveTestSuite) TestKeys() {
	s.Equal("documents/d1.txt", DocumentKey("d1"))
	s.Equal("reports/r1.json", ReportKey("r1"))
}

func (s *ArchiveTestSuite) TestPutDocument() {
	doc := legal.Document{ID: "d1", Filename: "nda.txt", RawText: "The Recipient shall keep it confidential."}
	s.api.On("PutObject", mock.Anything, "cw-test", "documents/d1.txt", doc.RawText, int64(len(doc.RawText)),
		mock.MatchedBy(func(o minio.PutObjectOptions) bool {
			return o.ContentType == contentTypeText &&
				o.UserMetadata["filename"] == "nda.txt" &&
				o.UserMetadata["content-hash"] == doc.ContentHash()
		})).Return(minio.UploadInfo{Key: "documents/d1.txt", Size: int64(len(doc.RawText))}, nil)

	key, err := s.archive.PutDocument(context.Background(), doc)
	s.NoError(err)
	s.Equal("documents/d1.txt", key)
}

func (s *ArchiveTestSuite) TestPutDocument_MissingID() {
	_, err := s.archive.PutDocument(context.Background(), legal.Document{RawText: "x"})
	s.Equal(ErrInvalidRequest, err)
}

func (s *ArchiveTestSuite) TestPutDocument_UploadFails() {
	s.api.On("PutObject", mock.Anything, "cw-test", "documents/d1.txt", "x", int64(1), mock.Anything).
		Return(minio.UploadInfo{}, errBackend)

	_, err := s.archive.PutDocument(context.Background(), legal.Document{ID: "d1", RawText: "x"})
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeInternal))
}

func (s *ArchiveTestSuite) TestGetDocument() {
	s.api.On("GetObject", mock.Anything, "cw-test", "documents/d1.txt", mock.Anything).Return("lease text", nil)

	text, err := s.archive.GetDocument(context.Background(), "d1")
	s.NoError(err)
	s.Equal("lease text", text)
}

func (s *ArchiveTestSuite) TestGetDocument_Missing() {
	s.api.On("GetObject", mock.Anything, "cw-test", "documents/gone.txt", mock.Anything).Return("", errNoSuchKey)

	_, err := s.archive.GetDocument(context.Background(), "gone")
	s.Equal(ErrObjectNotFound, err)
	s.True(pkgerrors.IsNotFound(err))
}

func (s *ArchiveTestSuite) TestReportRoundTrip() {
	r := &legal.AnalysisReport{ID: "r1", DocumentID: "d1", Summary: "short"}
	payload, _ := json.Marshal(r)

	s.api.On("PutObject", mock.Anything, "cw-test", "reports/r1.json", string(payload), int64(len(payload)),
		mock.MatchedBy(func(o minio.PutObjectOptions) bool { return o.ContentType == contentTypeJSON })).
		Return(minio.UploadInfo{Key: "reports/r1.json"}, nil)
	s.api.On("GetObject", mock.Anything, "cw-test", "reports/r1.json", mock.Anything).Return(string(payload), nil)

	key, err := s.archive.PutReport(context.Background(), r)
	s.Require().NoError(err)
	s.Equal("reports/r1.json", key)

	got, err := s.archive.GetReport(context.Background(), "r1")
	s.Require().NoError(err)
	s.Equal("short", got.Summary)
}

func (s *ArchiveTestSuite) TestGetReport_Corrupt() {
	s.api.On("GetObject", mock.Anything, "cw-test", "reports/r1.json", mock.Anything).Return("{", nil)

	_, err := s.archive.GetReport(context.Background(), "r1")
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeSerialization))
}

func (s *ArchiveTestSuite) TestDelete_IgnoresMissing() {
	s.api.On("RemoveObject", mock.Anything, "cw-test", "reports/r1.json", mock.Anything).Return(nil)
	s.api.On("RemoveObject", mock.Anything, "cw-test", "documents/d1.txt", mock.Anything).Return(errNoSuchKey)

	s.NoError(s.archive.Delete(context.Background(), "r1", "d1"))
}

func (s *ArchiveTestSuite) TestDelete_Error() {
	s.api.On("RemoveObject", mock.Anything, "cw-test", "reports/r1.json", mock.Anything).Return(errBackend)

	err := s.archive.Delete(context.Background(), "r1", "")
	s.Error(err)
}

func (s *ArchiveTestSuite) TestClosedClient() {
	s.NoError(s.client.Close())

	_, err := s.archive.GetDocument(context.Background(), "d1")
	s.Equal(ErrClientClosed, err)
	_, err = s.archive.PutDocument(context.Background(), legal.Document{ID: "d1"})
	s.Equal(ErrClientClosed, err)
	s.Equal(ErrClientClosed, s.archive.HealthCheck(context.Background()))
}

func (s *ArchiveTestSuite) TestHealthCheck() {
	s.api.On("BucketExists", mock.Anything, "cw-test").Return(true, nil).Once()
	s.NoError(s.archive.HealthCheck(context.Background()))

	s.api.On("BucketExists", mock.Anything, "cw-test").Return(false, nil).Once()
	err := s.archive.HealthCheck(context.Background())
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeServiceUnavailable))
}

func (s *ArchiveTestSuite) TestEnsureBucket_Creates() {
	s.api.On("BucketExists", mock.Anything, "cw-test").Return(false, nil)
	s.api.On("MakeBucket", mock.Anything, "cw-test", minio.MakeBucketOptions{Region: defaultRegion}).Return(nil)

	s.NoError(s.client.EnsureBucket(context.Background()))
}

func TestArchiveSuite(t *testing.T) {
	suite.Run(t, new(ArchiveTestSuite))
}

func TestApplyDefaults(t *testing.T) {
	cfg := config.MinIOConfig{}
	applyDefaults(&cfg)
	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, "clausewise", cfg.Bucket)

	c := NewClientWithAPI(nil, "", nil)
	assert.Equal(t, "clausewise", c.Bucket())
}

func TestNewClient_MissingEndpoint(t *testing.T) {
	_, err := NewClient(context.Background(), config.MinIOConfig{}, nil)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidParam))
}

//Personal.AI order the ending
