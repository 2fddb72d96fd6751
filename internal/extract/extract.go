// Package extract derives classifier features from raw PDF bytes using
// external tools: pdftotext for the text stream and ImageMagick's convert
// for a first-page thumbnail.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os/exec"
	"strconv"
	"time"

	"golang.org/x/image/draw"
)

// ErrNoImage means the PDF produced no usable page image (blank page,
// vector-only page, or render failure).
var ErrNoImage = errors.New("no usable page image")

// subprocessTimeout bounds each external tool invocation.
const subprocessTimeout = 30 * time.Second

// minJPEGBytes: convert emits a tiny JPEG for blank pages; anything this
// small carries no signal.
const minJPEGBytes = 3000

// imageSide is the tensor edge length the image model was trained with.
const imageSide = 299

// Text extracts the human-readable text of a PDF in reading order.
// Returns an empty string when the PDF has no extractable text.
func Text(ctx context.Context, pdf []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, subprocessTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "pdftotext", "-nopgbrk", "-eol", "unix", "-enc", "UTF-8", "-", "-")
	cmd.Stdin = bytes.NewReader(pdf)
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("pdftotext: %w", ctx.Err())
		}
		// pdftotext exits non-zero for damaged PDFs but may still emit
		// partial text; surface whatever came out
		if out.Len() > 0 {
			return out.String(), nil
		}
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return out.String(), nil
}

// Image renders one PDF page to a 299x299x3 float tensor. The convert
// parameters must match model training: white background, alpha removed,
// equalized, 156-wide thumbnail extended to a 224x224 canvas, then
// resized to 299x299.
func Image(ctx context.Context, pdf []byte, page int) ([][][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, subprocessTimeout)
	defer cancel()

	pageSpec := "pdf:-[" + strconv.Itoa(page) + "]"
	cmd := exec.CommandContext(ctx, "convert", pageSpec,
		"-background", "white", "-alpha", "remove", "-equalize",
		"-quality", "95", "-thumbnail", "156x",
		"-gravity", "north", "-extent", "224x224", "jpg:-")
	cmd.Stdin = bytes.NewReader(pdf)
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("convert: %w", ctx.Err())
		}
		return nil, fmt.Errorf("convert: %w: %s", err, errBuf.String())
	}
	if out.Len() <= minJPEGBytes {
		return nil, ErrNoImage
	}
	return tensorFromJPEG(out.Bytes())
}

// tensorFromJPEG decodes a JPEG and resizes it bilinearly to the model's
// input shape (imageSide, imageSide, 3).
func tensorFromJPEG(b []byte) ([][][]float32, error) {
	src, err := jpeg.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("jpeg decode: %w", err)
	}
	dst := image.NewRGBA(image.Rect(0, 0, imageSide, imageSide))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	tensor := make([][][]float32, imageSide)
	for y := 0; y < imageSide; y++ {
		row := make([][]float32, imageSide)
		for x := 0; x < imageSide; x++ {
			off := dst.PixOffset(x, y)
			row[x] = []float32{
				float32(dst.Pix[off]),
				float32(dst.Pix[off+1]),
				float32(dst.Pix[off+2]),
			}
		}
		tensor[y] = row
	}
	return tensor, nil
}
