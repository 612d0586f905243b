package dto

// UploadResponse is returned after storing a blob
type UploadResponse struct {
	BlobID      string `json:"blobId"`
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
	ContentType string `json:"contentType"`
	FileURL     string `json:"fileUrl"`
}

// DownloadQuery optionally attributes a download to a resource
type DownloadQuery struct {
	Type       string `form:"type"`
	ResourceID string `form:"resourceId"`
}
