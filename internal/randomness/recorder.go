package randomness

// Recorder 包住一次交易用的 Source；來源是 Prover 時保留最後一次抽籤的證明
type Recorder struct {
	source  Source
	context []byte
	proof   *Proof
}

// NewRecorder context 會簽進證明，通常是抽獎與已售票券的雜湊
func NewRecorder(source Source, context []byte) *Recorder {
	return &Recorder{source: source, context: context}
}

func (r *Recorder) DrawUniform(lo, hi uint64) (uint64, error) {
	if p, ok := r.source.(Prover); ok {
		v, proof, err := p.Draw(r.context, lo, hi)
		if err != nil {
			return 0, err
		}
		r.proof = proof
		return v, nil
	}
	return r.source.DrawUniform(lo, hi)
}

// Proof 可能為 nil（來源不支援證明）
func (r *Recorder) Proof() *Proof {
	return r.proof
}
