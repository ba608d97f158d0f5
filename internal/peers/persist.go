package peers

import (
	"encoding/gob"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/rotisserie/eris"

	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/vector"
)

// Snapshot artifacts live side by side under one path prefix: the vector
// blob and the metadata blob (companies, IDs, frozen normalization
// parameters). They are only meaningful as a pair.
const (
	indexSuffix = ".index"
	metaSuffix  = ".meta"
)

// ErrUntrained is returned when saving an index that has never trained.
var ErrUntrained = eris.New("peers: index is untrained, nothing to persist")

type indexBlob struct {
	Vectors []vector.Vector
}

type metaBlob struct {
	Companies     []model.Company
	IDs           []uint64
	NextID        uint64
	ReferenceYear int
	Scaler        *vector.Scaler
}

// SaveSnapshot writes both snapshot artifacts under the path prefix.
// Each artifact is gob-encoded, zstd-compressed, written to a temp file in
// the destination directory and renamed into place, so a failure never
// leaves a half-written artifact behind.
func (idx *Index) SaveSnapshot(pathPrefix string) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if !idx.scaler.Fitted() {
		return ErrUntrained
	}

	indexPath := pathPrefix + indexSuffix
	metaPath := pathPrefix + metaSuffix

	indexTmp, err := writeBlob(indexPath, indexBlob{Vectors: idx.vectors})
	if err != nil {
		return eris.Wrap(err, "peers: write index blob")
	}
	metaTmp, err := writeBlob(metaPath, metaBlob{
		Companies:     idx.companies,
		IDs:           idx.ids,
		NextID:        idx.nextID,
		ReferenceYear: idx.encoder.ReferenceYear,
		Scaler:        idx.scaler,
	})
	if err != nil {
		_ = os.Remove(indexTmp)
		return eris.Wrap(err, "peers: write meta blob")
	}

	if err := os.Rename(indexTmp, indexPath); err != nil {
		_ = os.Remove(indexTmp)
		_ = os.Remove(metaTmp)
		return eris.Wrap(err, "peers: replace index blob")
	}
	if err := os.Rename(metaTmp, metaPath); err != nil {
		_ = os.Remove(metaTmp)
		return eris.Wrap(err, "peers: replace meta blob")
	}
	return nil
}

// LoadSnapshot replaces the in-memory state with a previously saved
// snapshot and reports whether it did. On any failure (missing file,
// corrupt blob, inconsistent pair) it returns false with the cause and
// leaves the current state untouched.
func (idx *Index) LoadSnapshot(pathPrefix string) (bool, error) {
	var ib indexBlob
	if err := readBlob(pathPrefix+indexSuffix, &ib); err != nil {
		return false, eris.Wrap(err, "peers: read index blob")
	}
	var mb metaBlob
	if err := readBlob(pathPrefix+metaSuffix, &mb); err != nil {
		return false, eris.Wrap(err, "peers: read meta blob")
	}

	if len(ib.Vectors) == 0 {
		return false, eris.New("peers: snapshot holds no vectors")
	}
	if len(ib.Vectors) != len(mb.Companies) || len(ib.Vectors) != len(mb.IDs) {
		return false, eris.Errorf("peers: snapshot mismatch: %d vectors, %d companies, %d ids",
			len(ib.Vectors), len(mb.Companies), len(mb.IDs))
	}
	if mb.Scaler == nil || !mb.Scaler.Fitted() {
		return false, eris.New("peers: snapshot has no fitted normalizer")
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.vectors = ib.Vectors
	idx.companies = mb.Companies
	idx.ids = mb.IDs
	idx.nextID = mb.NextID
	idx.encoder = vector.NewEncoder(mb.ReferenceYear)
	idx.scaler = mb.Scaler
	return true, nil
}

func writeBlob(path string, v any) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}

	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", err
	}
	tmp := f.Name()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", err
	}
	if err := gob.NewEncoder(zw).Encode(v); err != nil {
		_ = zw.Close()
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", err
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return tmp, nil
}

func readBlob(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	zr, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer zr.Close()

	return gob.NewDecoder(zr).Decode(v)
}
