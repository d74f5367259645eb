package video

// Frame is one packed RGB24 frame.
type Frame []byte

// ChunkFrames splits a raw RGB24 stream into batches of up to chunkSize
// frames. Frames alias buffer. A trailing partial frame is dropped.
func ChunkFrames(buffer []byte, width, height, chunkSize int) [][]Frame {
	frameSize := width * height * 3
	if frameSize <= 0 || chunkSize <= 0 {
		return nil
	}
	var chunks [][]Frame
	for i := 0; i+frameSize <= len(buffer); i += chunkSize * frameSize {
		var batch []Frame
		for j := 0; j < chunkSize; j++ {
			idx := i + j*frameSize
			if idx+frameSize > len(buffer) {
				break
			}
			batch = append(batch, Frame(buffer[idx:idx+frameSize:idx+frameSize]))
		}
		chunks = append(chunks, batch)
	}
	return chunks
}
