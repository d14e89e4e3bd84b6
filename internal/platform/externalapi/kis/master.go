package kis

import (
	"archive/zip"
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/text/encoding/korean"

	"chart_backend/internal/feature/symbollist/domain/entity"
	"chart_backend/internal/feature/symbollist/usecase"
	"chart_backend/internal/shared/apperr"
)

const (
	DefaultKospiMasterURL  = "https://new.real.download.dws.co.kr/common/master/kospi_code.mst.zip"
	DefaultKosdaqMasterURL = "https://new.real.download.dws.co.kr/common/master/kosdaq_code.mst.zip"

	// マスタファイルは固定長レコード（CP949）。
	masterCodeEnd   = 9
	masterNameStart = 21
	masterNameLen   = 40
	symbolCodeLen   = 6
)

// MasterFile は市場ごとの銘柄マスタの取得元です。
type MasterFile struct {
	Market string // "KOSPI" or "KOSDAQ"
	URL    string // zip archive URL
	Entry  string // file name inside the archive
}

// DefaultMasterFiles はKOSPI・KOSDAQの銘柄マスタです。
func DefaultMasterFiles() []MasterFile {
	return []MasterFile{
		{Market: "KOSPI", URL: DefaultKospiMasterURL, Entry: "kospi_code.mst"},
		{Market: "KOSDAQ", URL: DefaultKosdaqMasterURL, Entry: "kosdaq_code.mst"},
	}
}

// MasterSource は銘柄マスタzipをダウンロードして解析するMasterSource実装です。
type MasterSource struct {
	http    *http.Client
	files   []MasterFile
	backoff func() retry.Backoff
}

var _ usecase.MasterSource = (*MasterSource)(nil)

// NewMasterSource は MasterSource を生成します。files が空の場合は DefaultMasterFiles を使います。
func NewMasterSource(httpClient *http.Client, cfg Config, files []MasterFile) *MasterSource {
	if len(files) == 0 {
		files = DefaultMasterFiles()
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = time.Second
	}
	return &MasterSource{
		http:  httpClient,
		files: files,
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(cfg.MaxRetries, retry.NewConstant(delay))
		},
	}
}

// FetchSymbols は全市場の銘柄を取得します。SortKey はファイル内の出現順です。
func (m *MasterSource) FetchSymbols(ctx context.Context) ([]entity.Symbol, error) {
	var out []entity.Symbol
	for _, f := range m.files {
		archive, err := m.download(ctx, f.URL)
		if err != nil {
			return nil, fmt.Errorf("download %s master: %w", f.Market, err)
		}
		symbols, err := ParseMasterArchive(archive, f.Entry, f.Market)
		if err != nil {
			return nil, fmt.Errorf("parse %s master: %w", f.Market, err)
		}
		slog.Info("symbol master downloaded", "market", f.Market, "count", len(symbols))
		for _, s := range symbols {
			s.SortKey = len(out)
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MasterSource) download(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := retry.Do(ctx, m.backoff(), func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		res, err := m.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("master download failed", "url", url, "error", err)
			return retry.RetryableError(fmt.Errorf("%w: %v", apperr.ErrUpstreamRequest, err))
		}
		defer func() {
			if err := res.Body.Close(); err != nil {
				slog.Warn("failed to close response body", "error", err)
			}
		}()
		if res.StatusCode >= 400 {
			return fmt.Errorf("%w: master http %d", apperr.ErrUpstreamRequest, res.StatusCode)
		}
		b, err := io.ReadAll(res.Body)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("%w: %v", apperr.ErrUpstreamRequest, err))
		}
		body = b
		return nil
	})
	return body, err
}

// ParseMasterArchive はzip内の entry を固定長レコードとして解析します。
// 名前が空、またはコードが6桁にならない行は捨てます。
func ParseMasterArchive(archive []byte, entry, market string) ([]entity.Symbol, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrParse, err)
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || f.Name != entry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrParse, err)
		}
		defer rc.Close()
		return parseMasterLines(rc, market)
	}
	return nil, fmt.Errorf("%w: entry %s not found", apperr.ErrParse, entry)
}

func parseMasterLines(r io.Reader, market string) ([]entity.Symbol, error) {
	dec := korean.EUCKR.NewDecoder()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var out []entity.Symbol
	for sc.Scan() {
		line := bytes.TrimRight(sc.Bytes(), "\r")
		if len(line) < masterNameStart+masterNameLen {
			continue
		}
		code := strings.TrimSpace(string(line[:masterCodeEnd]))
		if len(code) >= symbolCodeLen {
			code = code[len(code)-symbolCodeLen:]
		}
		name, err := dec.Bytes(line[masterNameStart : masterNameStart+masterNameLen])
		if err != nil {
			continue
		}
		trimmed := strings.TrimSpace(string(name))
		if trimmed == "" || len(code) != symbolCodeLen {
			continue
		}
		out = append(out, entity.Symbol{Code: code, Name: trimmed, Market: market, IsActive: true})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrParse, err)
	}
	return out, nil
}
