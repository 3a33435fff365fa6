package render

// articleStyles is the inline stylesheet for published articles.
// Color variables and component classes follow the decoration markup the
// section prompts instruct the model to emit.
const articleStyles = `
    :root {
      --primary: #10b981;
      --primary-light: #d1fae5;
      --text: #1f2937;
      --text-light: #6b7280;
      --bg: #ffffff;
      --bg-light: #f9fafb;
      --bubble-left-bg: #f3f4f6;
      --bubble-right-bg: #ecfdf5;
      --warning-bg: #fef3c7;
      --warning-border: #f59e0b;
      --ok-bg: #d1fae5;
      --ok-border: #10b981;
      --info-bg: #eff6ff;
      --info-border: #3b82f6;
    }
    * { box-sizing: border-box; margin: 0; padding: 0; }
    body {
      font-family: 'Hiragino Kaku Gothic ProN', 'Meiryo', '游ゴシック', 'Yu Gothic', sans-serif;
      font-size: 16px;
      line-height: 2;
      color: var(--text);
      background: var(--bg);
      -webkit-font-smoothing: antialiased;
    }
    article { max-width: 780px; margin: 0 auto; padding: 32px 16px; }
    @media (min-width: 768px) { article { padding: 48px 24px; } }
    h1 {
      font-size: 1.5rem;
      font-weight: 700;
      line-height: 1.4;
      margin-bottom: 32px;
      color: white;
      text-align: center;
      padding: 24px 20px;
      background: linear-gradient(135deg, #6366f1 0%, #8b5cf6 50%, #d946ef 100%);
      border-radius: 16px;
    }
    @media (min-width: 768px) { h1 { font-size: 2rem; padding: 32px 28px; } }
    h2 {
      font-size: 1.25rem;
      font-weight: 700;
      margin: 0 0 20px;
      padding: 16px 20px;
      border-radius: 12px;
      color: white;
    }
    h3 {
      font-size: 1.1rem;
      font-weight: 700;
      margin: 0 0 16px;
      padding: 12px 16px;
      background: white;
      border-radius: 8px;
    }
    p { margin-bottom: 1em; }
    a { color: #2563eb; }
    .eyecatch, .section-image {
      width: 100%;
      height: auto;
      border-radius: 12px;
      margin-bottom: 24px;
    }
    .section-wrapper { border-radius: 16px; padding: 24px 16px; margin-bottom: 32px; }
    .h3-wrapper { border-radius: 12px; padding: 20px 16px; margin: 20px 0; }
    .section-intro { margin-bottom: 16px; }
    .toc-container {
      background: var(--bg-light);
      border: 1px solid #e5e7eb;
      border-radius: 12px;
      padding: 20px 24px;
      margin-bottom: 32px;
    }
    .toc-title { font-weight: 700; margin-bottom: 8px; }
    .toc-list, .toc-sublist { list-style: none; }
    .toc-sublist { padding-left: 20px; }
    .toc-item-h2 { margin: 6px 0; font-weight: 600; }
    .toc-item-h3 { margin: 2px 0; font-weight: 400; font-size: 0.95rem; }
    .toc-container a { color: var(--text); text-decoration: none; }
    .toc-container a:hover { color: var(--primary); }
    .info-table {
      width: 100%;
      border-collapse: collapse;
      margin: 16px 0;
      background: white;
      border-radius: 8px;
      overflow: hidden;
    }
    .info-table th {
      background: var(--primary);
      color: white;
      padding: 10px 12px;
      font-size: 0.9rem;
    }
    .info-table td { padding: 10px 12px; border-bottom: 1px solid #e5e7eb; font-size: 0.9rem; }
    .bubble-left, .bubble-right {
      display: flex;
      align-items: flex-start;
      gap: 10px;
      margin: 12px 0;
    }
    .bubble-right { flex-direction: row-reverse; }
    .bubble-icon {
      flex-shrink: 0;
      width: 40px;
      height: 40px;
      border-radius: 50%;
      display: flex;
      align-items: center;
      justify-content: center;
      font-weight: 700;
      color: white;
      background: var(--text-light);
    }
    .bubble-right .bubble-icon { background: var(--primary); }
    .bubble-text {
      padding: 10px 14px;
      border-radius: 12px;
      background: var(--bubble-left-bg);
      max-width: 80%;
    }
    .bubble-right .bubble-text { background: var(--bubble-right-bg); }
    .check-list { list-style: none; margin: 12px 0; }
    .check-list li { padding-left: 28px; position: relative; margin: 6px 0; }
    .check-list li::before { content: "✓"; position: absolute; left: 4px; color: var(--primary); font-weight: 700; }
    .info-box, .warning-box, .ok-box {
      padding: 14px 18px;
      border-radius: 8px;
      margin: 16px 0;
    }
    .info-box { background: var(--info-bg); border-left: 4px solid var(--info-border); }
    .warning-box { background: var(--warning-bg); border-left: 4px solid var(--warning-border); }
    .ok-box { background: var(--ok-bg); border-left: 4px solid var(--ok-border); }
    .summary-box {
      background: var(--primary-light);
      border-radius: 12px;
      padding: 20px 24px;
      margin: 32px 0;
    }
    .summary-title { font-weight: 700; margin-bottom: 8px; }
    .pochipp-box {
      background: white;
      border: 1px solid #e5e7eb;
      border-radius: 12px;
      padding: 16px;
      margin: 20px 0;
    }
    .pochipp-main { display: flex; gap: 14px; align-items: center; }
    .pochipp-image img { border-radius: 8px; object-fit: contain; }
    .pochipp-title { font-weight: 600; font-size: 0.95rem; line-height: 1.5; }
    .pochipp-price { color: #b91c1c; font-weight: 700; margin-top: 4px; }
    .pochipp-buttons { display: flex; gap: 10px; margin-top: 12px; }
    .pochipp-btn {
      flex: 1;
      text-align: center;
      padding: 10px 0;
      border-radius: 8px;
      color: white;
      font-weight: 700;
      text-decoration: none;
      font-size: 0.9rem;
    }
    .pochipp-btn-amazon { background: #f59e0b; }
    .pochipp-btn-rakuten { background: #bf0000; }
`
