package handler_test

import (
	"bytes"
	"image"
	_ "image/png"
	"net/http"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"
)

type AvatarHandlerSuite struct {
	suite.Suite
	env *testEnv
}

func (s *AvatarHandlerSuite) SetupTest() {
	s.env = newTestEnv(s.T())
}

func (s *AvatarHandlerSuite) TearDownTest() {
	s.env.Close()
}

func TestAvatarHandlerSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(AvatarHandlerSuite))
}

func (s *AvatarHandlerSuite) upload(token string, field string, content []byte) int {
	body, contentType := multipartAvatar(s.T(), field, content)

	req, _ := http.NewRequest("POST", "/users/me/avatar", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	return s.env.do(req).Code
}

func (s *AvatarHandlerSuite) TestUploadAndFetch() {
	uid, token := s.env.signUp(s.T(), "mike@example.com")

	Expect(s.upload(token, "avatar", pngBytes(s.T(), 400, 300))).To(Equal(http.StatusOK))

	rr := s.env.get("/users/"+uid+"/avatar", "")

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(rr.Header().Get("Content-Type")).To(Equal("image/png"))

	img, format, err := image.Decode(bytes.NewReader(rr.Body.Bytes()))

	Expect(err).ToNot(HaveOccurred())
	Expect(format).To(Equal("png"))
	Expect(img.Bounds().Dx()).To(Equal(250))
	Expect(img.Bounds().Dy()).To(Equal(250))
}

func (s *AvatarHandlerSuite) TestFetchIsPublic() {
	uid, token := s.env.signUp(s.T(), "mike@example.com")

	Expect(s.upload(token, "avatar", pngBytes(s.T(), 300, 300))).To(Equal(http.StatusOK))

	// No Authorization header at all.
	rr := s.env.get("/users/"+uid+"/avatar", "")

	Expect(rr.Code).To(Equal(http.StatusOK))
}

func (s *AvatarHandlerSuite) TestUploadRequiresAuthentication() {
	body, contentType := multipartAvatar(s.T(), "avatar", pngBytes(s.T(), 300, 300))

	req, _ := http.NewRequest("POST", "/users/me/avatar", body)
	req.Header.Set("Content-Type", contentType)

	Expect(s.env.do(req).Code).To(Equal(http.StatusUnauthorized))
}

func (s *AvatarHandlerSuite) TestUploadRejectsNonImage() {
	_, token := s.env.signUp(s.T(), "mike@example.com")

	Expect(s.upload(token, "avatar", []byte("plain text payload"))).To(Equal(http.StatusBadRequest))
}

func (s *AvatarHandlerSuite) TestUploadRejectsMissingFile() {
	_, token := s.env.signUp(s.T(), "mike@example.com")

	rr := s.env.postJSON("/users/me/avatar", "", token)

	Expect(rr.Code).To(Equal(http.StatusBadRequest))
}

func (s *AvatarHandlerSuite) TestUploadRejectsWrongFieldName() {
	_, token := s.env.signUp(s.T(), "mike@example.com")

	Expect(s.upload(token, "file", pngBytes(s.T(), 300, 300))).To(Equal(http.StatusBadRequest))
}

func (s *AvatarHandlerSuite) TestFetchMissingAvatar() {
	uid, _ := s.env.signUp(s.T(), "mike@example.com")

	rr := s.env.get("/users/"+uid+"/avatar", "")

	Expect(rr.Code).To(Equal(http.StatusNotFound))
}

func (s *AvatarHandlerSuite) TestFetchUnknownAccount() {
	rr := s.env.get("/users/9f0d8a30-1111-2222-3333-444455556666/avatar", "")

	Expect(rr.Code).To(Equal(http.StatusNotFound))
}

func (s *AvatarHandlerSuite) TestRemoveAvatar() {
	uid, token := s.env.signUp(s.T(), "mike@example.com")

	Expect(s.upload(token, "avatar", pngBytes(s.T(), 300, 300))).To(Equal(http.StatusOK))

	rr := s.env.delete("/users/me/avatar", token)

	Expect(rr.Code).To(Equal(http.StatusOK))

	Expect(s.env.get("/users/"+uid+"/avatar", "").Code).To(Equal(http.StatusNotFound))
}
