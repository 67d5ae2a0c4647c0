package products

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

const productUploadDir = "./static/productpic"

// saveProductImage stores the uploaded "image" form file and a 300px-wide
// thumbnail next to it. Returns the public paths of both.
func saveProductImage(r *http.Request, productID string) (string, string, error) {
	if r.MultipartForm == nil {
		return "", "", fmt.Errorf("no multipart form")
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		return "", "", err
	}
	defer file.Close()

	img, err := imaging.Decode(file)
	if err != nil {
		return "", "", fmt.Errorf("failed to decode image: %w", err)
	}

	fileName := productID + ".jpg"
	thumbDir := filepath.Join(productUploadDir, "thumb")
	if err := os.MkdirAll(thumbDir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	if err := imaging.Save(img, filepath.Join(productUploadDir, fileName)); err != nil {
		return "", "", fmt.Errorf("failed to save image: %w", err)
	}

	thumb := imaging.Resize(img, 300, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, filepath.Join(thumbDir, fileName)); err != nil {
		return "", "", fmt.Errorf("failed to save thumbnail: %w", err)
	}

	return "/productpic/" + fileName, "/productpic/thumb/" + fileName, nil
}
