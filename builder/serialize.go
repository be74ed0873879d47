package builder

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/h2non/filetype"

	"github.com/negaisa/obj-to-pathfinding-grid/math32"
	"github.com/negaisa/obj-to-pathfinding-grid/voxel"
)

// Encode writes grid in the .dat format, optionally gzip compressed.
func Encode(w io.Writer, grid *voxel.Grid, useGzip bool) error {
	buf := bytes.NewBuffer(nil)
	// 写入文件头
	header := FileHeader{
		Magic:   GRID_FILE_MAGIC,
		Version: GRID_FILE_VERSION,
	}
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if err := binary.Write(buf, binary.LittleEndian, newGridHeader(grid)); err != nil {
		return fmt.Errorf("failed to write grid header: %w", err)
	}

	if err := binary.Write(buf, binary.LittleEndian, []uint64(grid.Bitmap())); err != nil {
		return fmt.Errorf("failed to write obstacles: %w", err)
	}

	content := buf.Bytes()
	if useGzip {
		var err error
		if content, err = Compress(content); err != nil {
			return err
		}
	}

	if _, err := w.Write(content); err != nil {
		return fmt.Errorf("failed to write grid: %w", err)
	}
	return nil
}

// Decode reads a grid written by Encode. Compression is detected from the
// content.
func Decode(r io.Reader) (*voxel.Grid, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read grid: %w", err)
	}
	grid, _, err := decode(content)
	return grid, err
}

func decode(content []byte) (*voxel.Grid, FileHeader, error) {
	var header FileHeader
	if isGzip(content) {
		var err error
		if content, err = Decompress(content); err != nil {
			return nil, header, err
		}
	}

	buf := bytes.NewReader(content)
	// 读取文件头
	if err := binary.Read(buf, binary.LittleEndian, &header); err != nil {
		return nil, header, fmt.Errorf("failed to read header: %w", err)
	}

	// 验证文件格式
	if header.Magic != GRID_FILE_MAGIC {
		return nil, header, ErrInvalidMagic
	}
	if header.Version != GRID_FILE_VERSION {
		return nil, header, fmt.Errorf("%w: %d", ErrUnsupportedVersion, header.Version)
	}

	var gridHeader GridHeader
	if err := binary.Read(buf, binary.LittleEndian, &gridHeader); err != nil {
		return nil, header, fmt.Errorf("failed to read grid header: %w", err)
	}

	if remaining := uint64(buf.Len()) / 8; uint64(gridHeader.WordCount) > remaining {
		return nil, header, fmt.Errorf("failed to read obstacles: %d words declared, %d present", gridHeader.WordCount, remaining)
	}
	words := make(math32.Bitmap, gridHeader.WordCount)
	if err := binary.Read(buf, binary.LittleEndian, []uint64(words)); err != nil {
		return nil, header, fmt.Errorf("failed to read obstacles: %w", err)
	}

	grid, err := voxel.GridFromBitmap(gridHeader.Frame(), words)
	if err != nil {
		return nil, header, fmt.Errorf("invalid grid data: %w", err)
	}
	if count := grid.ObstacleCount(); count != gridHeader.ObstacleCount {
		return nil, header, fmt.Errorf("invalid grid data: header says %d obstacles, found %d", gridHeader.ObstacleCount, count)
	}
	return grid, header, nil
}

// Save writes grid to filename, creating its directory if needed.
func Save(grid *voxel.Grid, filename string, useGzip bool) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output folder: %w", err)
		}
	}

	buf := bytes.NewBuffer(nil)
	if err := Encode(buf, grid, useGzip); err != nil {
		return err
	}

	if err := os.WriteFile(filename, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Load reads a grid file written by Save.
func Load(filename string) (*voxel.Grid, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	grid, _, err := decode(content)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", filename, err)
	}
	return grid, nil
}

// GetFileInfo 获取网格文件信息
func GetFileInfo(filename string) (*GridFileInfo, error) {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	grid, header, err := decode(content)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", filename, err)
	}

	return &GridFileInfo{
		Filename:   filename,
		FileSize:   fileInfo.Size(),
		Version:    header.Version,
		Compressed: isGzip(content),
		Width:      grid.Width(),
		Height:     grid.Height(),
		Center:     grid.Center(),
		Obstacles:  grid.ObstacleCount(),
		FillRatio:  grid.FillRatio(),
		DataSize:   grid.GetMemoryUsage(),
		ModTime:    fileInfo.ModTime(),
	}, nil
}

func isGzip(content []byte) bool {
	return filetype.Is(content, "gz")
}

// Decompress inflates gzip content.
func Decompress(content []byte) ([]byte, error) {
	gzipReader, err := gzip.NewReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer gzipReader.Close()

	decompressed, err := io.ReadAll(gzipReader)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}
	return decompressed, nil
}

// Compress deflates content with gzip.
func Compress(content []byte) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	gzipWriter := gzip.NewWriter(buf)
	if _, err := gzipWriter.Write(content); err != nil {
		return nil, fmt.Errorf("failed to compress: %w", err)
	}
	if err := gzipWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress: %w", err)
	}
	return buf.Bytes(), nil
}
